package pcm

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/teslashibe/alifbata/pkg/metrics"
)

// Decode converts a base64 payload of interleaved int16 LE samples into a
// normalized Buffer.
//
// An empty payload yields an empty buffer and no error. Invalid base64, a byte
// length that is not a multiple of 2*numChannels, or a non-positive format
// yields a *DecodeError. Remainder bytes are never silently dropped.
func Decode(payload string, sampleRate, numChannels int) (*Buffer, error) {
	if sampleRate <= 0 || numChannels <= 0 {
		return nil, reject(&DecodeError{Kind: ErrInvalidFormat, Length: len(payload)})
	}
	if payload == "" {
		return newBuffer(sampleRate, numChannels, 0), nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, reject(&DecodeError{Kind: ErrMalformedBase64, Length: len(payload), Err: err})
	}
	return DecodeBytes(raw, sampleRate, numChannels)
}

// DecodeBytes normalizes raw interleaved int16 LE PCM.
func DecodeBytes(raw []byte, sampleRate, numChannels int) (*Buffer, error) {
	if sampleRate <= 0 || numChannels <= 0 {
		return nil, reject(&DecodeError{Kind: ErrInvalidFormat, Length: len(raw)})
	}

	frameBytes := bytesPerSample * numChannels
	if len(raw)%frameBytes != 0 {
		return nil, reject(&DecodeError{Kind: ErrTruncatedPayload, Length: len(raw)})
	}

	frames := len(raw) / frameBytes
	buf := newBuffer(sampleRate, numChannels, frames)

	for c := 0; c < numChannels; c++ {
		ch := buf.Channels[c]
		for i := 0; i < frames; i++ {
			off := (i*numChannels + c) * bytesPerSample
			s := int16(binary.LittleEndian.Uint16(raw[off:]))
			ch[i] = float32(s) / fullScale
		}
	}
	return buf, nil
}

func newBuffer(sampleRate, numChannels, frames int) *Buffer {
	channels := make([][]float32, numChannels)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	return &Buffer{SampleRate: sampleRate, Channels: channels}
}

func reject(err *DecodeError) error {
	metrics.DecodeErrorsTotal.Inc()
	return err
}
