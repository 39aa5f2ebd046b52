package audio

import (
	"encoding/binary"
	"math"
)

// PCM16FromFloat32 converts one capture block of float32 samples in [-1, 1]
// into signed 16-bit samples. Values are clamped first; positive samples
// scale by 0x7FFF and negative samples by 0x8000.
func PCM16FromFloat32(block []float32) []int16 {
	out := make([]int16, len(block))
	for i, v := range block {
		f := float64(v)
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		if f < 0 {
			out[i] = int16(math.Round(f * 0x8000))
		} else {
			out[i] = int16(math.Round(f * 0x7FFF))
		}
	}
	return out
}

// Float32FromBytes decodes little-endian float32 PCM bytes. A trailing
// partial sample is dropped.
func Float32FromBytes(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// Int16ToBytes encodes samples as little-endian PCM16 bytes.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(s))
	}
	return out
}

// BytesToInt16 decodes little-endian PCM16 bytes. A trailing odd byte is
// dropped.
func BytesToInt16(data []byte) []int16 {
	n := len(data) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return out
}

// DownmixStereo averages interleaved stereo samples into mono.
func DownmixStereo(samples []int16) []int16 {
	mono := make([]int16, len(samples)/2)
	for i := 0; i+1 < len(samples); i += 2 {
		v := int32(samples[i]) + int32(samples[i+1])
		mono[i/2] = int16(v / 2)
	}
	return mono
}
