package lang

import (
	"math"
	"strings"
)

// Class groups primitives by how they consume the stack.
type Class uint8

const (
	ClassStack Class = iota
	ClassConstant
	ClassMonadicPervasive
	ClassDyadicPervasive
	ClassMonadicArray
	ClassDyadicArray
	ClassModifier
	ClassSys
)

func (c Class) String() string {
	switch c {
	case ClassStack:
		return "stack"
	case ClassConstant:
		return "constant"
	case ClassMonadicPervasive:
		return "monadic pervasive"
	case ClassDyadicPervasive:
		return "dyadic pervasive"
	case ClassMonadicArray:
		return "monadic array"
	case ClassDyadicArray:
		return "dyadic array"
	case ClassModifier:
		return "modifier"
	case ClassSys:
		return "system"
	}
	return "unknown"
}

// Primitive is a built-in function or modifier.
type Primitive struct {
	// Name is the canonical display name, e.g. "less than".
	Name  string
	Glyph rune // zero for glyphless primitives
	// ASCII is an alternative spelling typed without special keys.
	ASCII        string
	Class        Class
	Experimental bool

	fn  func(*Interp) error
	mod func(*Interp, *item) error
}

// HasGlyph reports whether p is written with a single glyph.
func (p *Primitive) HasGlyph() bool { return p.Glyph != 0 }

// String returns the glyph, or the name for glyphless primitives.
func (p *Primitive) String() string {
	if p.HasGlyph() {
		return string(p.Glyph)
	}
	return p.Name
}

// SpacelessName returns the name with its spaces removed.
func (p *Primitive) SpacelessName() string {
	return strings.ReplaceAll(p.Name, " ", "")
}

// IsModifier reports whether p takes a function operand.
func (p *Primitive) IsModifier() bool { return p.mod != nil }

var (
	primitives []*Primitive
	byGlyph    map[rune]*Primitive
)

func init() {
	primitives = []*Primitive{
		{Name: "duplicate", Glyph: '.', Class: ClassStack, fn: dup},
		{Name: "over", Glyph: ',', Class: ClassStack, fn: over},
		{Name: "flip", Glyph: ':', Class: ClassStack, fn: flip},
		{Name: "pop", Glyph: '◌', Class: ClassStack, fn: pop},
		{Name: "identity", Glyph: '∘', Class: ClassStack, fn: identity},

		{Name: "pi", Glyph: 'π', Class: ClassConstant, fn: constant(math.Pi)},
		{Name: "eta", Glyph: 'η', Class: ClassConstant, fn: constant(math.Pi / 2)},
		{Name: "tau", Glyph: 'τ', Class: ClassConstant, fn: constant(2 * math.Pi)},
		{Name: "infinity", Glyph: '∞', Class: ClassConstant, fn: constant(math.Inf(1))},

		{Name: "not", Glyph: '¬', Class: ClassMonadicPervasive, fn: monadic("not", opNot)},
		{Name: "sign", Glyph: '±', Class: ClassMonadicPervasive, fn: monadic("sign", opSign)},
		{Name: "negate", Glyph: '¯', ASCII: "`", Class: ClassMonadicPervasive, fn: monadic("negate", opNegate)},
		{Name: "absolute value", Glyph: '⌵', Class: ClassMonadicPervasive, fn: monadic("absolute value", opAbs)},
		{Name: "sqrt", Glyph: '√', Class: ClassMonadicPervasive, fn: monadic("sqrt", opSqrt)},
		{Name: "sine", Glyph: '∿', Class: ClassMonadicPervasive, fn: monadic("sine", opSine)},
		{Name: "floor", Glyph: '⌊', Class: ClassMonadicPervasive, fn: monadic("floor", opFloor)},
		{Name: "ceiling", Glyph: '⌈', Class: ClassMonadicPervasive, fn: monadic("ceiling", opCeil)},
		{Name: "round", Glyph: '⁅', Class: ClassMonadicPervasive, fn: monadic("round", opRound)},

		{Name: "add", Glyph: '+', Class: ClassDyadicPervasive, fn: dyadic("add", opAdd)},
		{Name: "subtract", Glyph: '-', Class: ClassDyadicPervasive, fn: dyadic("subtract", opSub)},
		{Name: "multiply", Glyph: '×', ASCII: "*", Class: ClassDyadicPervasive, fn: dyadic("multiply", numeric(func(a, b float64) float64 { return b * a }))},
		{Name: "divide", Glyph: '÷', ASCII: "%", Class: ClassDyadicPervasive, fn: dyadic("divide", numeric(func(a, b float64) float64 { return b / a }))},
		{Name: "modulus", Glyph: '◿', Class: ClassDyadicPervasive, fn: dyadic("modulus", numeric(modulus))},
		{Name: "power", Glyph: 'ⁿ', Class: ClassDyadicPervasive, fn: dyadic("power", numeric(func(a, b float64) float64 { return math.Pow(b, a) }))},
		{Name: "logarithm", Glyph: 'ₙ', Class: ClassDyadicPervasive, fn: dyadic("logarithm", numeric(func(a, b float64) float64 { return math.Log(b) / math.Log(a) }))},
		{Name: "minimum", Glyph: '↧', Class: ClassDyadicPervasive, fn: dyadic("minimum", ordered(math.Min))},
		{Name: "maximum", Glyph: '↥', Class: ClassDyadicPervasive, fn: dyadic("maximum", ordered(math.Max))},
		{Name: "equals", Glyph: '=', Class: ClassDyadicPervasive, fn: dyadic("equals", equality(true))},
		{Name: "not equals", Glyph: '≠', ASCII: "!=", Class: ClassDyadicPervasive, fn: dyadic("not equals", equality(false))},
		{Name: "less than", Glyph: '<', Class: ClassDyadicPervasive, fn: dyadic("less than", comparison(func(a, b float64) bool { return b < a }))},
		{Name: "less or equal", Glyph: '≤', ASCII: "<=", Class: ClassDyadicPervasive, fn: dyadic("less or equal", comparison(func(a, b float64) bool { return b <= a }))},
		{Name: "greater than", Glyph: '>', Class: ClassDyadicPervasive, fn: dyadic("greater than", comparison(func(a, b float64) bool { return b > a }))},
		{Name: "greater or equal", Glyph: '≥', ASCII: ">=", Class: ClassDyadicPervasive, fn: dyadic("greater or equal", comparison(func(a, b float64) bool { return b >= a }))},
		{Name: "atangent", Glyph: '∠', Class: ClassDyadicPervasive, fn: dyadic("atangent", numeric(math.Atan2))},

		{Name: "length", Glyph: '⧻', Class: ClassMonadicArray, fn: length},
		{Name: "shape", Glyph: '△', Class: ClassMonadicArray, fn: shapeOf},
		{Name: "range", Glyph: '⇡', Class: ClassMonadicArray, fn: rangeOf},
		{Name: "first", Glyph: '⊢', Class: ClassMonadicArray, fn: first},
		{Name: "reverse", Glyph: '⇌', Class: ClassMonadicArray, fn: reverse},
		{Name: "deshape", Glyph: '♭', Class: ClassMonadicArray, fn: deshape},
		{Name: "transpose", Glyph: '⍉', Class: ClassMonadicArray, fn: transpose},
		{Name: "rise", Glyph: '⍏', Class: ClassMonadicArray, fn: grade(false)},
		{Name: "fall", Glyph: '⍖', Class: ClassMonadicArray, fn: grade(true)},
		{Name: "where", Glyph: '⊚', Class: ClassMonadicArray, fn: where},
		{Name: "deduplicate", Glyph: '◴', Class: ClassMonadicArray, fn: deduplicate},

		{Name: "join", Glyph: '⊂', Class: ClassDyadicArray, fn: join},
		{Name: "couple", Glyph: '⊟', Class: ClassDyadicArray, fn: couple},
		{Name: "reshape", Glyph: '↯', Class: ClassDyadicArray, fn: reshape},
		{Name: "take", Glyph: '↙', Class: ClassDyadicArray, fn: take},
		{Name: "drop", Glyph: '↘', Class: ClassDyadicArray, fn: drop},
		{Name: "rotate", Glyph: '↻', Class: ClassDyadicArray, fn: rotate},
		{Name: "select", Glyph: '⊏', Class: ClassDyadicArray, fn: selectRows},
		{Name: "pick", Glyph: '⊡', Class: ClassDyadicArray, fn: pick},
		{Name: "keep", Glyph: '▽', Class: ClassDyadicArray, fn: keep},
		{Name: "match", Glyph: '≍', Class: ClassDyadicArray, fn: match},

		{Name: "reduce", Glyph: '/', Class: ClassModifier, mod: reduce},
		{Name: "scan", Glyph: '\\', Class: ClassModifier, mod: scan},
		{Name: "each", Glyph: '∵', Class: ClassModifier, mod: each},
		{Name: "rows", Glyph: '≡', Class: ClassModifier, mod: rowsMod},
		{Name: "table", Glyph: '⊞', Class: ClassModifier, mod: table},
		{Name: "repeat", Glyph: '⍥', Class: ClassModifier, mod: repeat},
		{Name: "dip", Glyph: '⊙', Class: ClassModifier, mod: dip},

		{Name: "&p", Class: ClassSys, fn: sysPrint},
		{Name: "&fras", Class: ClassSys, fn: sysReadFile},

		{Name: "occurrences", Glyph: '⧆', Class: ClassMonadicArray, Experimental: true, fn: occurrences},
		{Name: "stringify", Class: ClassModifier, Experimental: true, mod: stringify},
	}

	byGlyph = make(map[rune]*Primitive, len(primitives))
	for _, p := range primitives {
		if p.HasGlyph() {
			byGlyph[p.Glyph] = p
		}
	}
}

// All returns every primitive in catalog order.
func All() []*Primitive {
	out := make([]*Primitive, len(primitives))
	copy(out, primitives)
	return out
}

// FromGlyph returns the primitive written as r, or nil.
func FromGlyph(r rune) *Primitive {
	return byGlyph[r]
}

// FromFormatName resolves the display name of a glyph-bearing primitive,
// with or without spaces, or its ASCII spelling.
func FromFormatName(name string) *Primitive {
	for _, p := range primitives {
		if !p.HasGlyph() {
			continue
		}
		if p.Name == name || p.SpacelessName() == name || (p.ASCII != "" && p.ASCII == name) {
			return p
		}
	}
	for _, sp := range asciiSpellings {
		if sp.text == name {
			return FromGlyph(sp.glyph)
		}
	}
	return nil
}

// FromName resolves any primitive by name, including glyphless and system
// primitives. Matching ignores case and spaces.
func FromName(name string) *Primitive {
	key := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	if key == "" {
		return nil
	}
	for _, p := range primitives {
		if p.SpacelessName() == key {
			return p
		}
	}
	return nil
}

func fromASCII(s string) *Primitive {
	for _, p := range primitives {
		if p.ASCII == s {
			return p
		}
	}
	return nil
}

// fromWord resolves a lowercase word written in source: an exact spaceless
// name, or a unique prefix of at least three letters.
func fromWord(word string) *Primitive {
	if isBindingName(word) {
		return nil
	}
	if strings.HasPrefix(word, "&") {
		return FromName(word)
	}
	for _, p := range primitives {
		if p.SpacelessName() == word {
			return p
		}
	}
	if len(word) < 3 {
		return nil
	}
	var match *Primitive
	for _, p := range primitives {
		if strings.HasPrefix(p.SpacelessName(), word) {
			if match != nil {
				return nil
			}
			match = p
		}
	}
	return match
}
