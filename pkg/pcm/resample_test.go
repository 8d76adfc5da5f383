package pcm

import (
	"errors"
	"math"
	"testing"
)

func ramp(n int) *Buffer {
	b := newBuffer(24000, 1, n)
	for i := range b.Channels[0] {
		b.Channels[0][i] = float32(i) / float32(n)
	}
	return b
}

func TestResampleSameRate(t *testing.T) {
	b := ramp(10)
	out, err := b.Resample(24000)
	if err != nil {
		t.Fatal(err)
	}
	if out.FrameCount() != 10 || out.SampleRate != 24000 {
		t.Errorf("unexpected buffer: %d frames at %d Hz", out.FrameCount(), out.SampleRate)
	}
}

func TestResampleDownsample(t *testing.T) {
	// 20ms at 48kHz -> 24kHz
	b := newBuffer(48000, 2, 960)
	out, err := b.Resample(24000)
	if err != nil {
		t.Fatal(err)
	}
	if out.FrameCount() != 480 || out.NumChannels() != 2 {
		t.Errorf("expected 480 frames x 2 channels, got %d x %d", out.FrameCount(), out.NumChannels())
	}
}

func TestResampleUpsampleInterpolates(t *testing.T) {
	b := &Buffer{SampleRate: 16000, Channels: [][]float32{{0, 0.5, 1}}}
	out, err := b.Resample(32000)
	if err != nil {
		t.Fatal(err)
	}
	if out.FrameCount() != 6 {
		t.Fatalf("expected 6 frames, got %d", out.FrameCount())
	}
	want := []float32{0, 0.25, 0.5, 0.75, 1, 1}
	for i, w := range want {
		if math.Abs(float64(out.Channels[0][i]-w)) > 1e-6 {
			t.Errorf("frame %d: got %v want %v", i, out.Channels[0][i], w)
		}
	}
	if out.Duration() != b.Duration() {
		t.Errorf("duration changed: %v -> %v", b.Duration(), out.Duration())
	}
}

func TestResampleEmpty(t *testing.T) {
	out, err := newBuffer(24000, 1, 0).Resample(48000)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Empty() {
		t.Error("expected empty buffer")
	}
}

func TestResampleRejectsRate(t *testing.T) {
	for _, rate := range []int{0, 4000, 192000} {
		if _, err := ramp(4).Resample(rate); !errors.Is(err, ErrUnsupportedRate) {
			t.Errorf("rate %d: expected ErrUnsupportedRate, got %v", rate, err)
		}
	}
}
