// Package output turns interpreter values into renderable artifacts.
package output

import (
	"fmt"

	"github.com/deixis/glyphrun/internal/lang"
)

// Kind tags an Item.
type Kind uint8

const (
	Misc Kind = iota
	Audio
	Image
	Continuation
)

func (k Kind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Image:
		return "image"
	case Continuation:
		return "continuation"
	default:
		return "misc"
	}
}

// Item is one renderable result of a run.
type Item struct {
	Kind Kind

	// Data and MIMEType hold the encoded bytes of Audio and Image items.
	Data     []byte
	MIMEType string

	// Value is the untouched value of a Misc item.
	Value lang.Value

	// Count is the number of values a Continuation stands for.
	Count int
}

// MiscItem wraps a value as is.
func MiscItem(v lang.Value) Item {
	return Item{Kind: Misc, Value: v}
}

// ContinuationItem marks n values that were not shown.
func ContinuationItem(n int) Item {
	return Item{Kind: Continuation, Count: n}
}

// String describes the item for text-only surfaces.
func (it Item) String() string {
	switch it.Kind {
	case Audio, Image:
		return fmt.Sprintf("<%s %s, %d bytes>", it.Kind, it.MIMEType, len(it.Data))
	case Continuation:
		if it.Count == 1 {
			return "… and 1 more value"
		}
		return fmt.Sprintf("… and %d more values", it.Count)
	default:
		return it.Value.String()
	}
}
