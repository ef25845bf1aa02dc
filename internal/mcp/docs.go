package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/glyphrun/internal/lang"
	"github.com/deixis/glyphrun/internal/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type docsParams struct {
	Name string `json:"name" jsonschema:"primitive name, glyph or ASCII spelling (e.g. reverse, ⇌, <=)"`
}

func (h *handler) docsHandler(ctx context.Context, req *mcp.CallToolRequest, params docsParams) (*mcp.CallToolResult, any, error) {
	name := strings.TrimSpace(params.Name)
	res, _, err := textResult(h.engine.Load().Docs(name))
	if render.Resolve(name) == nil {
		if names := render.Suggest(name); len(names) > 0 {
			res.Content = append(res.Content, &mcp.TextContent{
				Text: "Did you mean: " + strings.Join(names, ", ") + "?",
			})
		}
	}
	return res, nil, err
}

type padParams struct {
	Code string `json:"code" jsonschema:"the program to format and share"`
}

func (h *handler) padHandler(ctx context.Context, req *mcp.CallToolRequest, params padParams) (*mcp.CallToolResult, any, error) {
	text, err := h.engine.Load().Pad(params.Code)
	if err != nil {
		return errorResult(fmt.Sprintf("Cannot format code: %v", err))
	}
	return textResult(text)
}

type primitivesParams struct{}

func (h *handler) primitivesHandler(ctx context.Context, req *mcp.CallToolRequest, _ primitivesParams) (*mcp.CallToolResult, any, error) {
	return textResult(formatPrimitives(lang.All()))
}

func formatPrimitives(prims []*lang.Primitive) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Primitives (%d):\n", len(prims))
	for _, p := range prims {
		glyph := p.String()
		if !p.HasGlyph() {
			glyph = "-"
		}
		fmt.Fprintf(&b, "  %s  %s", glyph, p.Name)
		if p.ASCII != "" {
			fmt.Fprintf(&b, " (%s)", p.ASCII)
		}
		fmt.Fprintf(&b, "  [%s]", p.Class)
		if p.Experimental {
			fmt.Fprint(&b, " experimental")
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
