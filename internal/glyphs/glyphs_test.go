package glyphs

import (
	"strings"
	"testing"

	"github.com/deixis/glyphrun/internal/lang"
)

func TestParse(t *testing.T) {
	tab, err := Parse(strings.NewReader("add 123\nlessthan 456\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tab.Len() != 2 {
		t.Errorf("Len = %d, want 2", tab.Len())
	}
	if id, ok := tab.Lookup("lessthan"); !ok || id != "456" {
		t.Errorf("Lookup(lessthan) = %q, %v; want 456, true", id, ok)
	}
	if _, ok := tab.Lookup("less than"); ok {
		t.Error("Lookup(less than) found an entry for a spaced name")
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("add 123\nbroken\n"))
	if err == nil {
		t.Fatal("expected error for line without a space")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %q, want to name line 2", err)
	}
}

func TestMustLoad(t *testing.T) {
	tab := MustLoad()
	if tab.Len() == 0 {
		t.Fatal("embedded table is empty")
	}
	// Every entry must name a real primitive.
	for name := range tab.ids {
		if lang.FromName(name) == nil {
			t.Errorf("glyph list entry %q is not a primitive", name)
		}
	}
	if _, ok := tab.Lookup("identity"); ok {
		t.Error("identity unexpectedly has an emoji")
	}
}

func TestNilTable(t *testing.T) {
	var tab *Table
	if _, ok := tab.Lookup("add"); ok {
		t.Error("nil table reported a match")
	}
}
