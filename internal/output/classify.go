package output

import (
	"fmt"

	"github.com/deixis/glyphrun/internal/config"
	"github.com/deixis/glyphrun/internal/lang"
)

// Classifier turns a value into exactly one Item by trying each
// representation in order and falling back to Misc.
type Classifier struct {
	Audio       AudioLimits
	MinImageDim int // minimum width and height of an auto-detected image

	AudioEncoder AudioEncoder
	ImageEncoder ImageEncoder
}

// NewClassifier builds a classifier with WAV and PNG encoders and the
// limits from cfg.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		Audio: AudioLimits{
			SampleRate:  cfg.SampleRate(),
			MaxChannels: cfg.MaxAudioChannels(),
			MinSamples:  cfg.MinAudioSamples(),
		},
		MinImageDim:  cfg.MinImageDim(),
		AudioEncoder: WAVEncoder{},
		ImageEncoder: PNGEncoder{},
	}
}

// candidate is one step of the cascade. A non-nil error means the value
// is not representable this way.
type candidate struct {
	kind Kind
	try  func(lang.Value) (Item, error)
}

// cascade lists the candidates in priority order. Audio comes first: audio
// shaped data would otherwise also pass as a degenerate image.
func (c *Classifier) cascade() []candidate {
	return []candidate{
		{kind: Audio, try: c.tryAudio},
		{kind: Image, try: c.tryImage},
	}
}

// Classify never fails. Errors and panics inside a candidate move on to
// the next one, and Misc catches everything else.
func (c *Classifier) Classify(v lang.Value) Item {
	for _, cand := range c.cascade() {
		if item, err := attempt(cand, v); err == nil {
			return item
		}
	}
	return MiscItem(v)
}

func attempt(cand candidate, v lang.Value) (item Item, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s candidate panicked: %v", cand.kind, p)
		}
	}()
	return cand.try(v)
}

func (c *Classifier) tryAudio(v lang.Value) (Item, error) {
	if c.AudioEncoder == nil {
		return Item{}, fmt.Errorf("no audio encoder")
	}
	buf, err := ToAudio(v, c.Audio)
	if err != nil {
		return Item{}, err
	}
	data, err := c.AudioEncoder.EncodeAudio(buf)
	if err != nil {
		return Item{}, err
	}
	return Item{Kind: Audio, Data: data, MIMEType: c.AudioEncoder.MIMEType()}, nil
}

func (c *Classifier) tryImage(v lang.Value) (Item, error) {
	if c.ImageEncoder == nil {
		return Item{}, fmt.Errorf("no image encoder")
	}
	img, err := ToImage(v)
	if err != nil {
		return Item{}, err
	}
	b := img.Bounds()
	if b.Dx() < c.MinImageDim || b.Dy() < c.MinImageDim {
		return Item{}, fmt.Errorf("image %dx%d is smaller than %dx%d", b.Dx(), b.Dy(), c.MinImageDim, c.MinImageDim)
	}
	data, err := c.ImageEncoder.EncodeImage(img)
	if err != nil {
		return Item{}, err
	}
	return Item{Kind: Image, Data: data, MIMEType: c.ImageEncoder.MIMEType()}, nil
}
