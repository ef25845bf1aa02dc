package output

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/deixis/glyphrun/internal/lang"
	"github.com/go-audio/audio"
)

// AudioLimits bounds the values accepted as audio.
type AudioLimits struct {
	SampleRate  int
	MaxChannels int
	MinSamples  int
}

// ToAudio interprets v as sample data: a list is one channel and a rank 2
// array is [channels, samples]. Samples are down-cast to float32 and
// interleaved.
func ToAudio(v lang.Value, lim AudioLimits) (*audio.Float32Buffer, error) {
	if v.Kind() != lang.NumKind {
		return nil, errors.New("audio must be numeric")
	}
	var channels, samples int
	switch shape := v.Shape(); len(shape) {
	case 1:
		channels, samples = 1, shape[0]
	case 2:
		channels, samples = shape[0], shape[1]
	default:
		return nil, fmt.Errorf("audio must be rank 1 or 2, got rank %d", len(shape))
	}
	if channels < 1 || channels > lim.MaxChannels {
		return nil, fmt.Errorf("audio must have 1 to %d channels, got %d", lim.MaxChannels, channels)
	}
	if samples < lim.MinSamples {
		return nil, fmt.Errorf("audio must have at least %d samples, got %d", lim.MinSamples, samples)
	}

	data := v.Data()
	buf := &audio.Float32Buffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: lim.SampleRate},
		Data:   make([]float32, len(data)),
	}
	for c := range channels {
		for s := range samples {
			x := data[c*samples+s]
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("sample %d of channel %d is not finite", s, c)
			}
			buf.Data[s*channels+c] = float32(x)
		}
	}
	return buf, nil
}

// ToImage interprets v as pixels: [height, width] grayscale, or
// [height, width, c] with c of 1 (gray), 2 (gray, alpha), 3 (RGB) or
// 4 (RGBA). Components are clamped to [0, 1].
func ToImage(v lang.Value) (*image.NRGBA, error) {
	if v.Kind() != lang.NumKind {
		return nil, errors.New("image must be numeric")
	}
	shape := v.Shape()
	var h, w, c int
	switch len(shape) {
	case 2:
		h, w, c = shape[0], shape[1], 1
	case 3:
		h, w, c = shape[0], shape[1], shape[2]
		if c < 1 || c > 4 {
			return nil, fmt.Errorf("image must have 1 to 4 color channels, got %d", c)
		}
	default:
		return nil, fmt.Errorf("image must be rank 2 or 3, got rank %d", len(shape))
	}
	if h == 0 || w == 0 {
		return nil, errors.New("image is empty")
	}

	data := v.Data()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			px := data[(y*w+x)*c : (y*w+x+1)*c]
			var col color.NRGBA
			switch c {
			case 1:
				g := channel(px[0])
				col = color.NRGBA{R: g, G: g, B: g, A: 255}
			case 2:
				g := channel(px[0])
				col = color.NRGBA{R: g, G: g, B: g, A: channel(px[1])}
			case 3:
				col = color.NRGBA{R: channel(px[0]), G: channel(px[1]), B: channel(px[2]), A: 255}
			case 4:
				col = color.NRGBA{R: channel(px[0]), G: channel(px[1]), B: channel(px[2]), A: channel(px[3])}
			}
			img.SetNRGBA(x, y, col)
		}
	}
	return img, nil
}

// channel scales a [0, 1] component to 8 bits. NaN maps to 0.
func channel(x float64) uint8 {
	if math.IsNaN(x) {
		return 0
	}
	return uint8(math.Round(min(max(x, 0), 1) * 255))
}
