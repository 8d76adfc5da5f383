package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// Quantize converts a normalized sample to int16, clamping out-of-range values.
func Quantize(s float32) int16 {
	v := math.Round(float64(s) * fullScale)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// EncodeBytes interleaves channels into int16 LE PCM.
func EncodeBytes(channels [][]float32) ([]byte, error) {
	if len(channels) == 0 {
		return []byte{}, nil
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, ErrChannelMismatch
		}
	}

	n := len(channels)
	out := make([]byte, frames*n*bytesPerSample)
	for i := 0; i < frames; i++ {
		for c, ch := range channels {
			off := (i*n + c) * bytesPerSample
			binary.LittleEndian.PutUint16(out[off:], uint16(Quantize(ch[i])))
		}
	}
	return out, nil
}

// Encode is the inverse of Decode: channels are quantized to int16,
// interleaved, and base64-encoded.
func Encode(channels [][]float32) (string, error) {
	raw, err := EncodeBytes(channels)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
