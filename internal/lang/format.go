package lang

import "strings"

// Version is the language version embedded in shared playground links.
const Version = "0.10.0"

// FormatConfig controls the formatter.
type FormatConfig struct {
	// CommentSpaceAfterHash inserts a space between # and comment text.
	CommentSpaceAfterHash bool
}

// DefaultFormatConfig returns the formatter defaults.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{CommentSpaceAfterHash: true}
}

// Format rewrites src canonically: primitive names and ASCII spellings
// become glyphs and spacing is normalized. Formatting formatted code
// returns it unchanged.
func Format(src string, cfg FormatConfig) (string, error) {
	toks, err := lex(src)
	if err != nil {
		return "", err
	}

	var (
		out  strings.Builder
		cur  strings.Builder
		prev *token
	)
	flush := func() {
		out.WriteString(cur.String())
		cur.Reset()
		prev = nil
	}
	for n := range toks {
		t := &toks[n]
		switch t.kind {
		case tokSpace:
			continue
		case tokNewline:
			flush()
			out.WriteString("\n")
			continue
		}
		if prev != nil && needsSpace(prev, t) {
			cur.WriteString(" ")
		}
		cur.WriteString(formatToken(t, cfg))
		prev = t
	}
	flush()
	return out.String(), nil
}

func formatToken(t *token, cfg FormatConfig) string {
	switch t.kind {
	case tokPrim:
		return t.prim.String()
	case tokComment:
		if cfg.CommentSpaceAfterHash && len(t.text) > 1 && t.text[1] != ' ' && t.text[1] != '!' {
			return "# " + t.text[1:]
		}
	}
	return t.text
}

// isWord reports whether t would merge with an adjacent word when written
// without a separating space.
func isWord(t *token) bool {
	switch t.kind {
	case tokNumber, tokString, tokChar, tokIdent:
		return true
	case tokPrim:
		return !t.prim.HasGlyph()
	}
	return false
}

func needsSpace(prev, cur *token) bool {
	switch {
	case cur.kind == tokComment:
		return true
	case prev.kind == tokArrow || cur.kind == tokArrow:
		return true
	case isWord(prev) && isWord(cur):
		return true
	case prev.kind == tokNumber && cur.kind == tokPrim && cur.prim.Glyph == '.':
		return true
	case isWord(prev) && cur.kind == tokPrim && cur.prim.Glyph == '¯':
		// Keeps a following number literal from fusing with prev.
		return true
	}
	return false
}

// SpanKind classifies a run of source text for highlighting.
type SpanKind uint8

const (
	SpanPlain SpanKind = iota
	SpanNumber
	SpanString
	SpanComment
	SpanPrimitive
	SpanIdent
)

// Span is a run of source text with its highlighting class.
type Span struct {
	Kind SpanKind
	Text string
	// Prim is set for SpanPrimitive.
	Prim *Primitive
}

// Spans splits src into highlightable spans. Concatenating the span texts
// yields src.
func Spans(src string) ([]Span, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	spans := make([]Span, 0, len(toks))
	for _, t := range toks {
		s := Span{Text: t.text}
		switch t.kind {
		case tokNumber:
			s.Kind = SpanNumber
		case tokString, tokChar:
			s.Kind = SpanString
		case tokComment:
			s.Kind = SpanComment
		case tokPrim:
			s.Kind, s.Prim = SpanPrimitive, t.prim
		case tokIdent:
			s.Kind = SpanIdent
		}
		spans = append(spans, s)
	}
	return spans, nil
}
