// Package mcp provides the glyphrun MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/deixis/glyphrun"
	"github.com/deixis/glyphrun/internal/config"
	"github.com/deixis/glyphrun/internal/glyphs"
	"github.com/deixis/glyphrun/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	engine atomic.Pointer[workflow.Engine]
	glyphs *glyphs.Table
	logger *slog.Logger
}

// NewServer creates an MCP server with all glyphrun tools registered.
func NewServer(cfg *config.Config, table *glyphs.Table, logger *slog.Logger) *mcp.Server {
	h := &handler{glyphs: table, logger: logger}
	h.engine.Store(workflow.NewEngine(cfg, table, logger))

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateConfigFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "glyphrun", Version: glyphrun.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "glyph_run",
		Description: `Run a program and return the values left on its stack, bottom first.

Plain values are returned as text. Numeric arrays that look like sound (a list of samples,
or up to 5 rows of samples, at 44.1kHz) are returned as WAV audio. Arrays of at least 30×30
pixels are returned as PNG images. At most 10 values are shown. Printed output comes first.
Runs are limited to 2 seconds and have no file system access.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "glyph_docs",
		Description: "Show the documentation of a primitive, looked up by name (e.g. reverse), glyph (e.g. ⇌) or ASCII spelling (e.g. <=).",
	}, h.docsHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "glyph_pad",
		Description: "Format a program canonically and return a shareable playground link with the highlighted, formatted code.",
	}, h.padHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "glyph_primitives",
		Description: "List every primitive with its glyph, name, ASCII spelling and class.",
	}, h.primitivesHandler)

	return s
}

// updateConfigFromRoots queries the client for MCP roots and rebuilds the
// engine from the .glyphrun file found there, if any. This is called
// during session initialization, before any tool calls.
func (h *handler) updateConfigFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}

	loaded, err := config.Load(u.Path)
	if err != nil {
		h.logger.WarnContext(ctx, "loading config from client root", "root", u.Path, "error", err)
		return
	}
	if loaded.Path == "" {
		return
	}
	h.engine.Store(workflow.NewEngine(loaded.Config, h.glyphs, h.logger))
	h.logger.InfoContext(ctx, "using client config", "path", loaded.Path)
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
