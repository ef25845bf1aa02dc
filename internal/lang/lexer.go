package lang

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokNumber tokenKind = iota
	tokString
	tokChar
	tokIdent
	tokPrim
	tokOpenBracket
	tokCloseBracket
	tokOpenParen
	tokCloseParen
	tokArrow
	tokComment
	tokNewline
	tokSpace
)

type token struct {
	kind tokenKind
	text string // source text as written
	off  int
	pos  Pos
	num  float64
	str  string
	prim *Primitive
}

// asciiSpellings maps multi-character ASCII spellings to primitive glyphs.
// Single-character spellings come from the primitive table.
var asciiSpellings = []struct {
	text  string
	glyph rune
}{
	{"!=", '≠'},
	{"<=", '≤'},
	{">=", '≥'},
}

var errUnterminated = errors.New("unterminated string literal")

// lex splits src into tokens. Whitespace and comments are kept so the
// formatter and highlighter can reproduce the source.
func lex(src string) ([]token, error) {
	l := lexer{src: src, line: 1, col: 1}
	for l.off < len(l.src) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

type lexer struct {
	src    string
	off    int
	line   int
	col    int
	tokens []token
}

func (l *lexer) peek(n int) rune {
	off := l.off
	for range n {
		if off >= len(l.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) emit(tok token, start int) {
	tok.text = l.src[start:l.off]
	tok.off = start
	l.tokens = append(l.tokens, tok)
}

func (l *lexer) next() error {
	start := l.off
	pos := Pos{Line: l.line, Column: l.col}
	r := l.peek(0)

	switch {
	case r == '\n':
		l.advance()
		l.emit(token{kind: tokNewline, pos: pos}, start)
	case r == ' ' || r == '\t' || r == '\r':
		for c := l.peek(0); c == ' ' || c == '\t' || c == '\r'; c = l.peek(0) {
			l.advance()
		}
		l.emit(token{kind: tokSpace, pos: pos}, start)
	case r == '#':
		for l.off < len(l.src) && l.peek(0) != '\n' {
			l.advance()
		}
		l.emit(token{kind: tokComment, pos: pos}, start)
	case r == '"':
		l.advance()
		var b strings.Builder
		for {
			if l.off >= len(l.src) || l.peek(0) == '\n' {
				return &Error{Err: errUnterminated, Pos: pos}
			}
			c := l.advance()
			if c == '"' {
				break
			}
			if c == '\\' {
				esc, err := l.escape(pos)
				if err != nil {
					return err
				}
				c = esc
			}
			b.WriteRune(c)
		}
		l.emit(token{kind: tokString, pos: pos, str: b.String()}, start)
	case r == '@':
		l.advance()
		if l.off >= len(l.src) {
			return errorf(pos, "expected a character after @")
		}
		c := l.advance()
		if c == '\\' {
			esc, err := l.escape(pos)
			if err != nil {
				return err
			}
			c = esc
		}
		l.emit(token{kind: tokChar, pos: pos, str: string(c)}, start)
	case isDigit(r) || (r == '¯' && isDigit(l.peek(1))):
		return l.number(pos)
	case r == '&' && unicode.IsLetter(l.peek(1)):
		l.advance()
		for unicode.IsLetter(l.peek(0)) {
			l.advance()
		}
		l.emitIdent(pos, start)
	case unicode.IsLetter(r):
		for unicode.IsLetter(l.peek(0)) {
			l.advance()
		}
		l.emitIdent(pos, start)
	case r == '[':
		l.advance()
		l.emit(token{kind: tokOpenBracket, pos: pos}, start)
	case r == ']':
		l.advance()
		l.emit(token{kind: tokCloseBracket, pos: pos}, start)
	case r == '(':
		l.advance()
		l.emit(token{kind: tokOpenParen, pos: pos}, start)
	case r == ')':
		l.advance()
		l.emit(token{kind: tokCloseParen, pos: pos}, start)
	case r == '←':
		l.advance()
		l.emit(token{kind: tokArrow, pos: pos}, start)
	default:
		for _, sp := range asciiSpellings {
			if strings.HasPrefix(l.src[l.off:], sp.text) {
				for range utf8.RuneCountInString(sp.text) {
					l.advance()
				}
				l.emit(token{kind: tokPrim, pos: pos, prim: FromGlyph(sp.glyph)}, start)
				return nil
			}
		}
		l.advance()
		p := FromGlyph(r)
		if p == nil {
			p = fromASCII(string(r))
		}
		if p == nil {
			return errorf(pos, "unexpected character %q", r)
		}
		l.emit(token{kind: tokPrim, pos: pos, prim: p}, start)
	}
	return nil
}

func (l *lexer) escape(pos Pos) (rune, error) {
	if l.off >= len(l.src) {
		return 0, &Error{Err: errUnterminated, Pos: pos}
	}
	switch c := l.advance(); c {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'':
		return c, nil
	default:
		return 0, errorf(pos, "invalid escape sequence \\%c", c)
	}
}

func (l *lexer) number(pos Pos) error {
	start := l.off
	neg := false
	if l.peek(0) == '¯' {
		neg = true
		l.advance()
	}
	digits := l.off
	for isDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance()
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
	if e := l.peek(0); (e == 'e' || e == 'E') && (isDigit(l.peek(1)) || (l.peek(1) == '¯' && isDigit(l.peek(2)))) {
		l.advance()
		if l.peek(0) == '¯' {
			l.advance()
		}
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
	text := strings.ReplaceAll(l.src[digits:l.off], "¯", "-")
	x, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return errorf(pos, "invalid number %q", l.src[start:l.off])
	}
	if neg {
		x = -x
	}
	l.emit(token{kind: tokNumber, pos: pos, num: x}, start)
	return nil
}

// emitIdent emits a primitive token when the identifier spells a primitive
// name and an identifier token otherwise.
func (l *lexer) emitIdent(pos Pos, start int) {
	word := l.src[start:l.off]
	if p := fromWord(word); p != nil {
		l.emit(token{kind: tokPrim, pos: pos, prim: p}, start)
		return
	}
	l.emit(token{kind: tokIdent, pos: pos}, start)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isBindingName reports whether word can name a binding.
func isBindingName(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}
