package lang

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed docs.yaml
var docsYAML []byte

// exampleLimit bounds the evaluation of a documentation example.
const exampleLimit = 2 * time.Second

// FragmentKind tags a DocFragment.
type FragmentKind uint8

const (
	FragmentText FragmentKind = iota
	FragmentCode
	FragmentEmphasis
	FragmentStrong
	FragmentPrimitive
	FragmentLink
)

// DocFragment is a piece of inline documentation markup.
type DocFragment struct {
	Kind FragmentKind
	Text string
	URL  string // FragmentLink only
	Prim *Primitive
	// Named is set when a primitive reference should be followed by its name.
	Named bool
}

// DocLine is either prose or an example.
type DocLine struct {
	Fragments []DocFragment
	Example   *Example
}

// Example is a runnable snippet. Its output is computed once, on demand.
type Example struct {
	input string

	once  sync.Once
	lines []string
	err   error
}

// Input returns the example source.
func (e *Example) Input() string { return e.input }

// Output runs the example in a fresh interpreter and returns one line per
// line of rendered stack values, bottom first.
func (e *Example) Output() ([]string, error) {
	e.once.Do(func() {
		interp := New(WithExperimental(true), WithExecutionLimit(exampleLimit))
		if e.err = interp.Run(context.Background(), e.input); e.err != nil {
			return
		}
		for _, v := range interp.TakeStack() {
			e.lines = append(e.lines, strings.Split(v.String(), "\n")...)
		}
	})
	return e.lines, e.err
}

// Doc is the documentation of a primitive.
type Doc struct {
	Short []DocFragment
	Lines []DocLine
}

// Doc returns the documentation of p, or nil if it has none.
func (p *Primitive) Doc() *Doc {
	return allDocs()[p.Name]
}

var allDocs = sync.OnceValue(func() map[string]*Doc {
	var raw map[string]string
	if err := yaml.Unmarshal(docsYAML, &raw); err != nil {
		panic(fmt.Sprintf("lang: parsing embedded docs: %v", err))
	}
	docs := make(map[string]*Doc, len(raw))
	for name, text := range raw {
		docs[name] = parseDoc(text)
	}
	return docs
})

// parseDoc reads a doc text: a short line, then prose lines and "ex:" lines.
func parseDoc(text string) *Doc {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	doc := &Doc{Short: parseFragments(lines[0])}
	for _, l := range lines[1:] {
		l = strings.TrimSpace(l)
		switch {
		case l == "":
		case strings.HasPrefix(l, "ex:"):
			doc.Lines = append(doc.Lines, DocLine{Example: &Example{input: strings.TrimSpace(l[len("ex:"):])}})
		default:
			doc.Lines = append(doc.Lines, DocLine{Fragments: parseFragments(l)})
		}
	}
	return doc
}

// parseFragments splits inline markup: `code`, _emphasis_, **strong**,
// [text](url) links and [name] or [glyph] primitive references.
func parseFragments(s string) []DocFragment {
	var (
		frags []DocFragment
		text  strings.Builder
	)
	flush := func() {
		if t := strings.TrimSpace(text.String()); t != "" {
			frags = append(frags, DocFragment{Kind: FragmentText, Text: t})
		}
		text.Reset()
	}
	for len(s) > 0 {
		if frag, rest, ok := inlineFragment(s, text.Len() == 0 || strings.HasSuffix(text.String(), " ")); ok {
			flush()
			frags = append(frags, frag)
			s = rest
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		text.WriteRune(r)
		s = s[size:]
	}
	flush()
	return frags
}

// inlineFragment parses one markup fragment at the start of s. Emphasis
// only opens at a word boundary.
func inlineFragment(s string, boundary bool) (DocFragment, string, bool) {
	switch {
	case strings.HasPrefix(s, "`"):
		if end := strings.Index(s[1:], "`"); end >= 0 {
			return DocFragment{Kind: FragmentCode, Text: s[1 : end+1]}, s[end+2:], true
		}
	case strings.HasPrefix(s, "**"):
		if end := strings.Index(s[2:], "**"); end > 0 {
			return DocFragment{Kind: FragmentStrong, Text: s[2 : end+2]}, s[end+4:], true
		}
	case strings.HasPrefix(s, "_") && boundary:
		if end := strings.Index(s[1:], "_"); end > 0 {
			return DocFragment{Kind: FragmentEmphasis, Text: s[1 : end+1]}, s[end+2:], true
		}
	case strings.HasPrefix(s, "["):
		end := strings.Index(s, "]")
		if end < 0 {
			break
		}
		inner, rest := s[1:end], s[end+1:]
		if strings.HasPrefix(rest, "(") {
			if rp := strings.Index(rest, ")"); rp > 0 {
				return DocFragment{Kind: FragmentLink, Text: inner, URL: rest[1:rp]}, rest[rp+1:], true
			}
		}
		if utf8.RuneCountInString(inner) == 1 {
			r, _ := utf8.DecodeRuneInString(inner)
			if p := FromGlyph(r); p != nil {
				return DocFragment{Kind: FragmentPrimitive, Prim: p}, rest, true
			}
		}
		if p := FromName(inner); p != nil {
			return DocFragment{Kind: FragmentPrimitive, Prim: p, Named: true}, rest, true
		}
	}
	return DocFragment{}, s, false
}
