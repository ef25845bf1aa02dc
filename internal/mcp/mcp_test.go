package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/deixis/glyphrun/internal/config"
	"github.com/deixis/glyphrun/internal/glyphs"
	"github.com/deixis/glyphrun/internal/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setup creates a full glyphrun MCP server + client over in-memory transports.
func setup(t *testing.T, cfg *config.Config) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	if cfg == nil {
		cfg = &config.Config{}
	}
	server := NewServer(cfg, glyphs.MustLoad(), logging.Discard())

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})

	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultTexts(r *mcp.CallToolResult) []string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return parts
}

func resultText(r *mcp.CallToolResult) string {
	return strings.Join(resultTexts(r), "\n")
}

func TestListTools(t *testing.T) {
	cs := setup(t, nil)
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{"glyph_run": true, "glyph_docs": true, "glyph_pad": true, "glyph_primitives": true}
	if len(res.Tools) != len(want) {
		t.Fatalf("len(Tools) = %d, want %d", len(res.Tools), len(want))
	}
	for _, tool := range res.Tools {
		if !want[tool.Name] {
			t.Errorf("unexpected tool %q", tool.Name)
		}
	}
}

// --- glyph_run ---

func TestGlyphRun_Values(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_run", map[string]any{"code": "⇡3 5"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	got := resultTexts(res)
	if len(got) != 2 || got[0] != "5" || got[1] != "[0 1 2]" {
		t.Errorf("texts = %q, want [5 [0 1 2]]", got)
	}
}

func TestGlyphRun_Stdout(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_run", map[string]any{"code": `&p "hi" 1`})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	got := resultTexts(res)
	if len(got) != 2 || got[0] != "Output:\nhi\n" || got[1] != "1" {
		t.Errorf("texts = %q, want printed output then 1", got)
	}
}

func TestGlyphRun_Continuation(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_run", map[string]any{"code": "1 2 3 4 5 6 7 8 9 10 11 12"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	got := resultTexts(res)
	if len(got) != 11 {
		t.Fatalf("len(texts) = %d, want 11", len(got))
	}
	if got[10] != "… and 2 more values" {
		t.Errorf("last = %q, want continuation", got[10])
	}
}

func TestGlyphRun_Image(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_run", map[string]any{"code": "÷ 900 ↯ [30 30] ⇡900"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if len(res.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1", len(res.Content))
	}
	img, ok := res.Content[0].(*mcp.ImageContent)
	if !ok {
		t.Fatalf("Content[0] = %T, want *mcp.ImageContent", res.Content[0])
	}
	if img.MIMEType != "image/png" || len(img.Data) == 0 {
		t.Errorf("image = %s, %d bytes, want png data", img.MIMEType, len(img.Data))
	}
}

func TestGlyphRun_Audio(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_run", map[string]any{"code": "∿ ⇡ 4410"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	snd, ok := res.Content[0].(*mcp.AudioContent)
	if !ok {
		t.Fatalf("Content[0] = %T, want *mcp.AudioContent", res.Content[0])
	}
	if snd.MIMEType != "audio/wav" || !strings.HasPrefix(string(snd.Data), "RIFF") {
		t.Errorf("audio = %s, want RIFF wav data", snd.MIMEType)
	}
}

func TestGlyphRun_ExecutionError(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_run", map[string]any{"code": "+ 1"})
	if !res.IsError {
		t.Fatalf("expected error result, got: %s", resultText(res))
	}
	if text := resultText(res); !strings.HasPrefix(text, "Error while running: ") {
		t.Errorf("text = %q, want execution error", text)
	}
}

func TestGlyphRun_EmptyCode(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_run", map[string]any{"code": ""})
	if !res.IsError {
		t.Fatalf("expected error result, got: %s", resultText(res))
	}
	if text := resultText(res); text != "cannot run empty code" {
		t.Errorf("text = %q, want %q", text, "cannot run empty code")
	}
}

func TestGlyphRun_ConfiguredCap(t *testing.T) {
	cs := setup(t, &config.Config{RawMaxValues: 1})
	res := callTool(t, cs, "glyph_run", map[string]any{"code": "1 2"})
	got := resultTexts(res)
	if len(got) != 2 || got[1] != "… and 1 more value" {
		t.Errorf("texts = %q, want one value and a continuation", got)
	}
}

// --- glyph_docs ---

func TestGlyphDocs(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_docs", map[string]any{"name": "⇌"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if text := resultText(res); !strings.Contains(text, "## Reverse the rows of an array") {
		t.Errorf("text = %q, want reverse docs", text)
	}
}

func TestGlyphDocs_Miss(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_docs", map[string]any{"name": "bogus"})
	if res.IsError {
		t.Fatalf("a miss is not an error: %s", resultText(res))
	}
	if text := resultText(res); text != "No docs found for 'bogus', did you spell it right?" {
		t.Errorf("text = %q", text)
	}
}

func TestGlyphDocs_Suggestion(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_docs", map[string]any{"name": "revrse"})
	got := resultTexts(res)
	if len(got) != 2 {
		t.Fatalf("texts = %q, want a miss and a suggestion", got)
	}
	if !strings.HasPrefix(got[1], "Did you mean: reverse") {
		t.Errorf("suggestion = %q, want reverse first", got[1])
	}
}

// --- glyph_pad ---

func TestGlyphPad(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_pad", map[string]any{"code": "reverse 1"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if text := resultText(res); !strings.HasPrefix(text, "[pad](https://www.uiua.org/pad?src=") {
		t.Errorf("text = %q, want pad link", text)
	}
}

func TestGlyphPad_FormatError(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_pad", map[string]any{"code": `"open`})
	if !res.IsError {
		t.Fatalf("expected error result, got: %s", resultText(res))
	}
}

// --- glyph_primitives ---

func TestGlyphPrimitives(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "glyph_primitives", map[string]any{})
	text := resultText(res)
	for _, want := range []string{
		"⇌  reverse  [monadic array]",
		"×  multiply (*)  [dyadic pervasive]",
		"-  stringify  [modifier] experimental",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
}
