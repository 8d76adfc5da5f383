package pcm

import "fmt"

// Supported output rates for Resample.
const (
	MinSampleRate = 8000
	MaxSampleRate = 96000
)

// Resample returns a copy of b at rate using linear interpolation, which is
// adequate for speech. The receiver is returned unchanged when rate already
// matches.
func (b *Buffer) Resample(rate int) (*Buffer, error) {
	if rate < MinSampleRate || rate > MaxSampleRate {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRate, rate)
	}
	if rate == b.SampleRate || b.Empty() {
		out := *b
		out.SampleRate = rate
		return &out, nil
	}

	ratio := float64(b.SampleRate) / float64(rate)
	frames := int(float64(b.FrameCount()) / ratio)
	out := newBuffer(rate, b.NumChannels(), frames)
	for c, src := range b.Channels {
		dst := out.Channels[c]
		last := len(src) - 1
		for i := range dst {
			pos := float64(i) * ratio
			idx := int(pos)
			if idx >= last {
				dst[i] = src[last]
				continue
			}
			frac := float32(pos - float64(idx))
			dst[i] = src[idx] + frac*(src[idx+1]-src[idx])
		}
	}
	return out, nil
}
