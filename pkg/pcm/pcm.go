// Package pcm decodes base64-encoded signed 16-bit little-endian PCM into
// normalized floating-point audio buffers.
//
// Generated speech arrives as raw PCM (24 kHz mono) wrapped in base64. Decode
// turns that payload into one float32 slice per channel, each sample scaled by
// 1/32768 so that -32768 maps to exactly -1.0 and +32767 to 0.99997.
//
//	buf, err := pcm.Decode(payload, pcm.DefaultSampleRate, pcm.DefaultChannels)
//	if err != nil {
//	    // treat as "no audio available"
//	}
//	if buf.Empty() {
//	    return // nothing to play
//	}
package pcm

import (
	"time"
)

// Audio format constants for generated speech.
const (
	DefaultSampleRate = 24000
	DefaultChannels   = 1
	BitDepth          = 16

	bytesPerSample = BitDepth / 8
	fullScale      = 32768.0
)

// Buffer is a decoded multi-channel audio buffer.
// Channels[c][i] is frame i of channel c; every channel has the same length.
// A Buffer is not modified after Decode returns it.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// FrameCount returns the number of frames per channel.
func (b *Buffer) FrameCount() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Empty reports whether the buffer has no frames to play.
func (b *Buffer) Empty() bool {
	return b == nil || b.FrameCount() == 0
}

// Duration returns the playback duration.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.SampleRate)
}

// Channel returns the samples for channel c.
func (b *Buffer) Channel(c int) []float32 {
	return b.Channels[c]
}
