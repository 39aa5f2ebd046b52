package translate

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"lingocall/internal/audio"
)

func TestNormalizeAudioShapesAreEquivalent(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 1, -1, 12345, -12345, 32767, -32768}
	raw := audio.Int16ToBytes(samples)

	numbers := make([]string, len(raw))
	for i, b := range raw {
		numbers[i] = fmt.Sprintf("%d", b)
	}
	joined := strings.Join(numbers, ",")

	shapes := map[string]string{
		"base64 string": fmt.Sprintf("%q", base64.StdEncoding.EncodeToString(raw)),
		"byte array":    "[" + joined + "]",
		"node buffer":   `{"type":"Buffer","data":[` + joined + `]}`,
	}

	for name, shape := range shapes {
		got, err := normalizeAudio(json.RawMessage(shape))
		if err != nil {
			t.Fatalf("%s: normalize failed: %v", name, err)
		}
		if len(got) != len(samples) {
			t.Fatalf("%s: expected %d samples, got %d", name, len(samples), len(got))
		}
		for i := range samples {
			if got[i] != samples[i] {
				t.Fatalf("%s: sample %d: expected %d, got %d", name, i, samples[i], got[i])
			}
		}
	}
}

func TestNormalizeAudioRejectsUnknownShapes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"object without type": `{"data":[1,2]}`,
		"wrong type tag":      `{"type":"Array","data":[1,2]}`,
		"boolean":             `true`,
		"empty":               ``,
	}
	for name, shape := range cases {
		if _, err := normalizeAudio(json.RawMessage(shape)); !errors.Is(err, errUnknownAudioShape) {
			t.Fatalf("%s: expected unknown shape error, got %v", name, err)
		}
	}
}

func TestNormalizeAudioRejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad base64":        `"not-base64!!"`,
		"non-byte number":   `[1, 256]`,
		"fractional number": `[1, 2.5]`,
		"negative number":   `[-1, 2]`,
		"empty array":       `[]`,
		"single byte":       `"` + base64.StdEncoding.EncodeToString([]byte{1}) + `"`,
	}
	for name, shape := range cases {
		if _, err := normalizeAudio(json.RawMessage(shape)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
