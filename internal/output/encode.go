package output

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// AudioEncoder encodes interleaved float samples into a container format.
type AudioEncoder interface {
	EncodeAudio(buf *audio.Float32Buffer) ([]byte, error)
	MIMEType() string
}

// ImageEncoder encodes pixels into a still-image format.
type ImageEncoder interface {
	EncodeImage(img image.Image) ([]byte, error)
	MIMEType() string
}

// WAVEncoder writes 16-bit PCM WAV.
type WAVEncoder struct{}

const wavBitDepth = 16

func (WAVEncoder) MIMEType() string { return "audio/wav" }

func (WAVEncoder) EncodeAudio(buf *audio.Float32Buffer) ([]byte, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, errors.New("no audio format")
	}
	peak := float64(audio.IntMaxSignedValue(wavBitDepth))
	pcm := &audio.IntBuffer{
		Format:         buf.Format,
		Data:           make([]int, len(buf.Data)),
		SourceBitDepth: wavBitDepth,
	}
	for i, x := range buf.Data {
		pcm.Data[i] = int(math.Round(min(max(float64(x), -1), 1) * peak))
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, buf.Format.SampleRate, wavBitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(pcm); err != nil {
		return nil, fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finishing wav: %w", err)
	}
	return out.buf, nil
}

// PNGEncoder writes PNG images.
type PNGEncoder struct{}

func (PNGEncoder) MIMEType() string { return "image/png" }

func (PNGEncoder) EncodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// seekBuffer is an in-memory io.WriteSeeker. The WAV encoder seeks back
// to patch chunk sizes once all samples are written.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, errors.New("seek: negative position")
	}
	b.pos = int(pos)
	return pos, nil
}
