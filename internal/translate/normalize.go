package translate

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"lingocall/internal/audio"
)

// audioEvent is the translation-audio payload. The audio field arrives in
// several wire representations depending on what the backend serialized;
// the shape negotiation happens once, here.
type audioEvent struct {
	Audio        json.RawMessage `json:"audio"`
	Text         string          `json:"text"`
	FromUserID   string          `json:"fromUserId"`
	FromUserName string          `json:"fromUserName"`
}

type serializedBuffer struct {
	Type string    `json:"type"`
	Data []float64 `json:"data"`
}

var errUnknownAudioShape = errors.New("unrecognized audio payload shape")

// normalizeAudio converts any supported wire representation of synthesized
// audio into PCM16 samples. Supported shapes: a base64 string (raw binary
// buffers and typed arrays serialize this way), a plain byte array, and a
// node-style {type:"Buffer", data:[...]} object.
func normalizeAudio(raw json.RawMessage) ([]int16, error) {
	if len(raw) == 0 {
		return nil, errUnknownAudioShape
	}

	var b64 string
	if err := json.Unmarshal(raw, &b64); err == nil {
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("audio payload is not valid base64: %w", err)
		}
		return samplesFromBytes(data)
	}

	var byteArray []float64
	if err := json.Unmarshal(raw, &byteArray); err == nil {
		data, err := bytesFromNumbers(byteArray)
		if err != nil {
			return nil, err
		}
		return samplesFromBytes(data)
	}

	var buffer serializedBuffer
	if err := json.Unmarshal(raw, &buffer); err == nil && buffer.Type == "Buffer" {
		data, err := bytesFromNumbers(buffer.Data)
		if err != nil {
			return nil, err
		}
		return samplesFromBytes(data)
	}

	return nil, errUnknownAudioShape
}

func samplesFromBytes(data []byte) ([]int16, error) {
	if len(data) < 2 {
		return nil, errors.New("audio payload too short for a single sample")
	}
	return audio.BytesToInt16(data), nil
}

func bytesFromNumbers(values []float64) ([]byte, error) {
	if len(values) == 0 {
		return nil, errors.New("audio payload array is empty")
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 || v != math.Trunc(v) {
			return nil, fmt.Errorf("audio payload array holds a non-byte value at index %d", i)
		}
		out[i] = byte(v)
	}
	return out, nil
}
