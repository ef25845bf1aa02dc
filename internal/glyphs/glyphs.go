// Package glyphs maps primitive names to the emoji identifiers used to
// render them in chat front-ends.
package glyphs

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
)

//go:embed glyphlist.txt
var glyphList []byte

// Table is an immutable map from a primitive's spaceless name to its
// emoji identifier. It is safe for concurrent reads.
type Table struct {
	ids map[string]string
}

// Parse reads one "<name> <id>" pair per line. A line without a space is
// an error.
func Parse(r io.Reader) (*Table, error) {
	ids := make(map[string]string)
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		name, id, ok := strings.Cut(sc.Text(), " ")
		if !ok {
			return nil, fmt.Errorf("glyph list line %d: missing space separator in %q", n, sc.Text())
		}
		ids[name] = id
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading glyph list: %w", err)
	}
	return &Table{ids: ids}, nil
}

// MustLoad parses the embedded glyph list. It panics if the list is
// malformed, which can only happen at build time.
func MustLoad() *Table {
	t, err := Parse(bytes.NewReader(glyphList))
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the emoji identifier for a spaceless name.
func (t *Table) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	id, ok := t.ids[name]
	return id, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ids)
}
