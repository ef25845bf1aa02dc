package lang

import "strings"

// ExperimentalMarker is the first-line comment that enables experimental
// primitives.
const ExperimentalMarker = "# Experimental!"

type itemKind uint8

const (
	itemPush itemKind = iota
	itemPrim
	itemArray
	itemFunc
	itemCall
)

// item is one executable unit of a line.
type item struct {
	kind    itemKind
	pos     Pos
	value   Value
	prim    *Primitive
	operand *item  // modifier operand
	body    []item // array or function contents
	name    string // binding name for itemCall
	src     string // source text, for stringify
}

// line is a parsed source line: either a binding or items to execute.
type line struct {
	binding string
	items   []item
}

type parser struct {
	src          string
	toks         []token
	i            int
	experimental bool
	bindings     map[string]bool
}

// parse turns src into lines of items.
func parse(src string, experimental bool) ([]line, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(src, ExperimentalMarker) {
		experimental = true
	}

	p := &parser{src: src, experimental: experimental, bindings: make(map[string]bool)}
	var lines []line
	for _, group := range splitLines(toks) {
		p.toks, p.i = group, 0
		ln, err := p.line()
		if err != nil {
			return nil, err
		}
		if ln.binding != "" || len(ln.items) > 0 {
			lines = append(lines, ln)
		}
	}
	return lines, nil
}

// splitLines groups tokens by line, dropping spaces and comments.
func splitLines(toks []token) [][]token {
	var (
		out [][]token
		cur []token
	)
	for _, t := range toks {
		switch t.kind {
		case tokSpace, tokComment:
		case tokNewline:
			out = append(out, cur)
			cur = nil
		default:
			cur = append(cur, t)
		}
	}
	return append(out, cur)
}

func (p *parser) line() (line, error) {
	var ln line
	if len(p.toks) >= 2 && p.toks[0].kind == tokIdent && p.toks[1].kind == tokArrow {
		name := p.toks[0].text
		if !isBindingName(name) {
			return ln, errorf(p.toks[0].pos, "binding name %q must start with a capital letter", name)
		}
		ln.binding = name
		p.i = 2
	}
	items, err := p.items(0)
	if err != nil {
		return ln, err
	}
	if p.i < len(p.toks) {
		return ln, errorf(p.toks[p.i].pos, "unexpected %q", p.toks[p.i].text)
	}
	ln.items = items
	if ln.binding != "" {
		p.bindings[ln.binding] = true
	}
	return ln, nil
}

// items parses until a closing token of kind until, or the end of the line
// when until is zero.
func (p *parser) items(until tokenKind) ([]item, error) {
	var out []item
	for p.i < len(p.toks) {
		if until != 0 && p.toks[p.i].kind == until {
			return out, nil
		}
		if k := p.toks[p.i].kind; k == tokCloseBracket || k == tokCloseParen {
			return out, nil
		}
		it, err := p.item()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (p *parser) item() (item, error) {
	t := p.toks[p.i]
	p.i++

	var it item
	switch t.kind {
	case tokNumber:
		it = item{kind: itemPush, pos: t.pos, value: Scalar(t.num)}
	case tokString:
		it = item{kind: itemPush, pos: t.pos, value: Chars(t.str)}
	case tokChar:
		it = item{kind: itemPush, pos: t.pos, value: Char([]rune(t.str)[0])}
	case tokPrim:
		if t.prim.Experimental && !p.experimental {
			return item{}, errorf(t.pos, "%s is experimental. To use it, add `%s` to the top of the file", t.prim.Name, ExperimentalMarker)
		}
		it = item{kind: itemPrim, pos: t.pos, prim: t.prim}
		if t.prim.IsModifier() {
			if p.i >= len(p.toks) {
				return item{}, errorf(t.pos, "%s is missing its function", t.prim.Name)
			}
			operand, err := p.item()
			if err != nil {
				return item{}, err
			}
			if operand.kind == itemPush || operand.kind == itemArray {
				return item{}, errorf(operand.pos, "%s expects a function", t.prim.Name)
			}
			it.operand = &operand
		}
	case tokOpenBracket, tokOpenParen:
		closer, kind := tokCloseBracket, itemArray
		if t.kind == tokOpenParen {
			closer, kind = tokCloseParen, itemFunc
		}
		body, err := p.items(closer)
		if err != nil {
			return item{}, err
		}
		if p.i >= len(p.toks) || p.toks[p.i].kind != closer {
			return item{}, errorf(t.pos, "unclosed %s", t.text)
		}
		p.i++
		it = item{kind: kind, pos: t.pos, body: body}
	case tokIdent:
		if !p.bindings[t.text] {
			return item{}, errorf(t.pos, "unknown identifier %s", t.text)
		}
		it = item{kind: itemCall, pos: t.pos, name: t.text}
	case tokArrow:
		return item{}, errorf(t.pos, "unexpected ←")
	default:
		return item{}, errorf(t.pos, "unexpected %q", t.text)
	}

	last := p.toks[p.i-1]
	it.src = p.src[t.off : last.off+len(last.text)]
	return it, nil
}
