package pcm

import (
	"errors"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// IntBuffer converts the buffer to an interleaved go-audio IntBuffer at 16 bits.
func (b *Buffer) IntBuffer() *audio.IntBuffer {
	n := b.NumChannels()
	frames := b.FrameCount()
	data := make([]int, frames*n)
	for c, ch := range b.Channels {
		for i, s := range ch {
			data[i*n+c] = int(Quantize(s))
		}
	}
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: n,
			SampleRate:  b.SampleRate,
		},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
}

// WriteWAV writes the buffer as a 16-bit PCM WAV file.
func (b *Buffer) WriteWAV(w io.WriteSeeker) error {
	enc := wav.NewEncoder(w, b.SampleRate, BitDepth, b.NumChannels(), wavFormatPCM)
	if err := enc.Write(b.IntBuffer()); err != nil {
		return err
	}
	return enc.Close()
}

// WAV renders the buffer as an in-memory WAV file.
func (b *Buffer) WAV() ([]byte, error) {
	var ws writeSeeker
	if err := b.WriteWAV(&ws); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// writeSeeker is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes on Close.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		if end > cap(w.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, w.buf)
			w.buf = grown
		} else {
			w.buf = w.buf[:end]
		}
	}
	copy(w.buf[w.pos:], p)
	w.pos = end
	return len(p), nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(w.pos) + offset
	case io.SeekEnd:
		abs = int64(len(w.buf)) + offset
	default:
		return 0, errors.New("pcm: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("pcm: negative position")
	}
	w.pos = int(abs)
	return abs, nil
}
