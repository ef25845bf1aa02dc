package output

import (
	"bytes"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/deixis/glyphrun/internal/config"
	"github.com/deixis/glyphrun/internal/lang"
	"github.com/go-audio/audio"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(&config.Config{})
}

// grid returns an h×w array filled with x.
func grid(h, w int, x float64) lang.Value {
	data := make([]float64, h*w)
	for i := range data {
		data[i] = x
	}
	return lang.Nums([]int{h, w}, data)
}

func ramp(n int) lang.Value {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i%100)/50 - 1
	}
	return lang.Vector(data...)
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestClassify_ImageThreshold(t *testing.T) {
	c := newTestClassifier(t)
	tests := []struct {
		name string
		h, w int
		want Kind
	}{
		{"29x29", 29, 29, Misc},
		{"30x30", 30, 30, Image},
		{"30x29", 30, 29, Misc},
		{"29x30", 29, 30, Misc},
		{"40x100", 40, 100, Image},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := c.Classify(grid(tt.h, tt.w, 0.5))
			if item.Kind != tt.want {
				t.Fatalf("Kind = %s, want %s", item.Kind, tt.want)
			}
		})
	}
}

func TestClassify_ImageIsPNG(t *testing.T) {
	c := newTestClassifier(t)
	item := c.Classify(grid(30, 30, 1))
	if item.Kind != Image {
		t.Fatalf("Kind = %s, want image", item.Kind)
	}
	if item.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", item.MIMEType)
	}
	if !bytes.HasPrefix(item.Data, pngMagic) {
		t.Errorf("Data does not start with the PNG signature")
	}
}

func TestClassify_RGBImage(t *testing.T) {
	c := newTestClassifier(t)
	data := make([]float64, 32*32*3)
	for i := range data {
		data[i] = float64(i%3) / 2
	}
	item := c.Classify(lang.Nums([]int{32, 32, 3}, data))
	if item.Kind != Image {
		t.Fatalf("Kind = %s, want image", item.Kind)
	}
}

func TestClassify_Audio(t *testing.T) {
	c := newTestClassifier(t)
	item := c.Classify(ramp(config.DefaultMinAudioSamples))
	if item.Kind != Audio {
		t.Fatalf("Kind = %s, want audio", item.Kind)
	}
	if item.MIMEType != "audio/wav" {
		t.Errorf("MIMEType = %q, want audio/wav", item.MIMEType)
	}
	if len(item.Data) < 44 {
		t.Fatalf("len(Data) = %d, want a full WAV header", len(item.Data))
	}
	if string(item.Data[0:4]) != "RIFF" || string(item.Data[8:12]) != "WAVE" {
		t.Errorf("header = %q, want RIFF....WAVE", item.Data[:12])
	}
}

func TestClassify_AudioTooShort(t *testing.T) {
	c := newTestClassifier(t)
	item := c.Classify(ramp(config.DefaultMinAudioSamples - 1))
	if item.Kind != Misc {
		t.Fatalf("Kind = %s, want misc", item.Kind)
	}
}

func TestClassify_AudioBeforeImage(t *testing.T) {
	c := newTestClassifier(t)
	c.Audio.MaxChannels = 64
	c.Audio.MinSamples = 30

	// 40×40 qualifies as both a 40-channel sound and a 40px image.
	item := c.Classify(grid(40, 40, 0.25))
	if item.Kind != Audio {
		t.Fatalf("Kind = %s, want audio", item.Kind)
	}
}

func TestClassify_NonFiniteAudioFallsThrough(t *testing.T) {
	c := newTestClassifier(t)
	c.Audio.MinSamples = 3
	item := c.Classify(lang.Vector(0, math.Inf(1), 0))
	if item.Kind != Misc {
		t.Fatalf("Kind = %s, want misc", item.Kind)
	}
}

func TestClassify_CharsAreMisc(t *testing.T) {
	c := newTestClassifier(t)
	v := lang.Chars("hello")
	item := c.Classify(v)
	if item.Kind != Misc {
		t.Fatalf("Kind = %s, want misc", item.Kind)
	}
	if !item.Value.Equal(v) {
		t.Errorf("Value = %v, want %v", item.Value, v)
	}
}

func TestClassify_ScalarIsMisc(t *testing.T) {
	c := newTestClassifier(t)
	item := c.Classify(lang.Scalar(3))
	if item.Kind != Misc || item.String() != "3" {
		t.Fatalf("item = %s %q, want misc 3", item.Kind, item.String())
	}
}

type failingImages struct{}

func (failingImages) EncodeImage(image.Image) ([]byte, error) { return nil, errors.New("disk full") }
func (failingImages) MIMEType() string                          { return "image/png" }

type panickingAudio struct{}

func (panickingAudio) EncodeAudio(*audio.Float32Buffer) ([]byte, error) { panic("codec bug") }
func (panickingAudio) MIMEType() string                                 { return "audio/wav" }

func TestClassify_EncoderFailureFallsThrough(t *testing.T) {
	c := newTestClassifier(t)
	c.ImageEncoder = failingImages{}
	item := c.Classify(grid(30, 30, 0))
	if item.Kind != Misc {
		t.Fatalf("Kind = %s, want misc", item.Kind)
	}
}

func TestClassify_EncoderPanicFallsThrough(t *testing.T) {
	c := newTestClassifier(t)
	c.AudioEncoder = panickingAudio{}
	item := c.Classify(ramp(config.DefaultMinAudioSamples))
	if item.Kind != Misc {
		t.Fatalf("Kind = %s, want misc", item.Kind)
	}
}

func TestToAudio_Interleaves(t *testing.T) {
	v := lang.Nums([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	buf, err := ToAudio(v, AudioLimits{SampleRate: 8000, MaxChannels: 2, MinSamples: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{1, 4, 2, 5, 3, 6}
	for i, x := range want {
		if buf.Data[i] != x {
			t.Fatalf("Data = %v, want %v", buf.Data, want)
		}
	}
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != 8000 {
		t.Errorf("Format = %+v, want 2 channels at 8000Hz", *buf.Format)
	}
}

func TestToImage_Clamps(t *testing.T) {
	img, err := ToImage(lang.Nums([]int{1, 3}, []float64{-1, 0.5, 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for x, want := range []uint8{0, 128, 255} {
		if got := img.NRGBAAt(x, 0).R; got != want {
			t.Errorf("pixel %d = %d, want %d", x, got, want)
		}
	}
}

func TestItemString(t *testing.T) {
	tests := []struct {
		item Item
		want string
	}{
		{ContinuationItem(1), "… and 1 more value"},
		{ContinuationItem(5), "… and 5 more values"},
		{Item{Kind: Image, MIMEType: "image/png", Data: make([]byte, 7)}, "<image image/png, 7 bytes>"},
		{MiscItem(lang.Vector(1, 2)), "[1 2]"},
	}
	for _, tt := range tests {
		if got := tt.item.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSeekBuffer(t *testing.T) {
	b := &seekBuffer{}
	b.Write([]byte("hello world"))
	if _, err := b.Seek(0, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	b.Write([]byte("J"))
	if _, err := b.Seek(0, 2); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	b.Write([]byte("!"))
	if got := string(b.buf); got != "Jello world!" {
		t.Fatalf("buf = %q, want %q", got, "Jello world!")
	}
}
