// Package render turns primitive documentation and source code into chat
// markup.
package render

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/deixis/glyphrun/internal/config"
	"github.com/deixis/glyphrun/internal/glyphs"
	"github.com/deixis/glyphrun/internal/lang"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Renderer renders docs and playground links. It holds no mutable state
// and is safe for concurrent use.
type Renderer struct {
	Glyphs   *glyphs.Table
	DocsURL  string // without trailing slash
	PadURL   string
	DocLines int // long description lines rendered per primitive
}

// New builds a renderer from cfg around an already loaded glyph table.
func New(cfg *config.Config, table *glyphs.Table) *Renderer {
	return &Renderer{
		Glyphs:   table,
		DocsURL:  cfg.DocsURL(),
		PadURL:   cfg.PadURL(),
		DocLines: cfg.DocLines(),
	}
}

// Resolve finds the primitive a user typed: its display name or ASCII
// spelling, then its glyph, then any internal name.
func Resolve(token string) *lang.Primitive {
	if p := lang.FromFormatName(token); p != nil {
		return p
	}
	if r, _ := utf8.DecodeRuneInString(token); r != utf8.RuneError {
		if p := lang.FromGlyph(r); p != nil {
			return p
		}
	}
	return lang.FromName(token)
}

// maxSuggestions bounds the names returned by Suggest.
const maxSuggestions = 3

// Suggest returns the primitive names closest to a token that did not
// resolve, best match first.
func Suggest(token string) []string {
	token = strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	if token == "" {
		return nil
	}
	var names []string
	for _, p := range lang.All() {
		names = append(names, p.SpacelessName())
	}
	ranks := fuzzy.RankFindFold(token, names)
	sort.Sort(ranks)

	var out []string
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, lang.FromName(r.Target).Name)
	}
	return out
}

// Docs renders the documentation of the primitive named by token. A miss
// is reported in the returned text, not as an error.
func (r *Renderer) Docs(token string) string {
	p := Resolve(token)
	if p == nil || p.Doc() == nil {
		return fmt.Sprintf("No docs found for '%s', did you spell it right?", token)
	}
	doc := p.Doc()

	short := make([]string, len(doc.Short))
	for i, frag := range doc.Short {
		short[i] = "## " + r.Fragment(frag)
	}

	lines := doc.Lines
	if len(lines) > r.DocLines {
		lines = lines[:r.DocLines]
	}
	long := make([]string, len(lines))
	for i, line := range lines {
		long[i] = r.Line(line)
	}

	return fmt.Sprintf("\n%s\n\n\n%s\n\n([More information](%s/%s))",
		strings.Join(short, "\n"), strings.Join(long, "\n"), r.DocsURL, url.PathEscape(p.Name))
}

// Fragment renders one inline documentation fragment.
func (r *Renderer) Fragment(frag lang.DocFragment) string {
	switch frag.Kind {
	case lang.FragmentCode:
		return "`" + frag.Text + "`"
	case lang.FragmentEmphasis:
		return "_" + frag.Text + "_"
	case lang.FragmentStrong:
		return "**" + frag.Text + "**"
	case lang.FragmentLink:
		return fmt.Sprintf("[%s](%s)", frag.Text, frag.URL)
	case lang.FragmentPrimitive:
		if frag.Named {
			return fmt.Sprintf("%s `%s`", r.Symbol(frag.Prim), frag.Prim.Name)
		}
		return r.Symbol(frag.Prim)
	default:
		return frag.Text
	}
}

// Line renders a prose line, or an example with its output as comments.
func (r *Renderer) Line(line lang.DocLine) string {
	if ex := line.Example; ex != nil {
		out, err := ex.Output()
		if err != nil {
			out = strings.Split(err.Error(), "\n")
		}
		var b strings.Builder
		b.WriteString(ex.Input())
		b.WriteString("\n")
		for _, l := range out {
			b.WriteString("# " + l + "\n")
		}
		return Highlight(b.String())
	}
	parts := make([]string, len(line.Fragments))
	for i, frag := range line.Fragments {
		parts[i] = r.Fragment(frag)
	}
	return strings.Join(parts, " ")
}

// Symbol renders a primitive for chat. Experimental primitives show their
// glyph (or name when glyphless). Others use the :name: emoji when the
// glyph table has one and <name> otherwise.
func (r *Renderer) Symbol(p *lang.Primitive) string {
	if p.Experimental {
		return p.String()
	}
	name := p.SpacelessName()
	if _, ok := r.Glyphs.Lookup(name); ok {
		return ":" + name + ":"
	}
	return "<" + name + ">"
}

// FormatAndLink formats code and returns a playground link for the
// original source followed by the highlighted formatted code.
func (r *Renderer) FormatAndLink(code string) (string, error) {
	formatted, err := lang.Format(code, lang.DefaultFormatConfig())
	if err != nil {
		return "", fmt.Errorf("formatting code: %w", err)
	}
	return fmt.Sprintf("[pad](%s) for: %s", r.PadLink(code), Highlight(formatted)), nil
}

// PadLink returns the playground URL that opens code as typed.
func (r *Renderer) PadLink(code string) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(code))
	return fmt.Sprintf("%s?src=%s__%s", r.PadURL, lang.Version, encoded)
}
