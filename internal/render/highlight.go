package render

import (
	"strings"

	"github.com/deixis/glyphrun/internal/lang"
)

// ANSI foreground colors understood by chat clients that render
// "```ansi" blocks.
const (
	ansiReset   = "\x1b[0m"
	ansiGray    = "\x1b[30m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

// Highlight wraps code in an ANSI colored code block. Code that does not
// lex is returned in a plain block.
func Highlight(code string) string {
	code = strings.TrimRight(code, "\n")
	spans, err := lang.Spans(code)
	if err != nil {
		return "```\n" + code + "\n```"
	}
	var b strings.Builder
	b.WriteString("```ansi\n")
	for _, s := range spans {
		color := spanColor(s)
		if color == "" || strings.TrimSpace(s.Text) == "" {
			b.WriteString(s.Text)
			continue
		}
		b.WriteString(color + s.Text + ansiReset)
	}
	b.WriteString("\n```")
	return b.String()
}

func spanColor(s lang.Span) string {
	switch s.Kind {
	case lang.SpanNumber:
		return ansiYellow
	case lang.SpanString:
		return ansiCyan
	case lang.SpanComment:
		return ansiGray
	case lang.SpanPrimitive:
		return primColor(s.Prim)
	}
	return ""
}

func primColor(p *lang.Primitive) string {
	switch p.Class {
	case lang.ClassMonadicPervasive, lang.ClassMonadicArray:
		return ansiGreen
	case lang.ClassDyadicPervasive, lang.ClassDyadicArray:
		return ansiBlue
	case lang.ClassModifier:
		return ansiMagenta
	case lang.ClassConstant:
		return ansiYellow
	case lang.ClassSys:
		return ansiRed
	}
	return ""
}
