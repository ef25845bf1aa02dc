package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/glyphrun/internal/output"
	"github.com/deixis/glyphrun/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type runParams struct {
	Code string `json:"code" jsonschema:"the program to run; experimental primitives are enabled"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	result, err := h.engine.Load().Run(ctx, params.Code)
	if err != nil {
		return errorResult(err.Error())
	}

	var content []mcp.Content
	if out := formatStdout(result); out != "" {
		content = append(content, &mcp.TextContent{Text: out})
	}
	for _, it := range result.Items {
		content = append(content, itemContent(it))
	}
	if len(content) == 0 {
		content = append(content, &mcp.TextContent{Text: "(empty stack)"})
	}
	return &mcp.CallToolResult{Content: content}, nil, nil
}

func formatStdout(result *workflow.RunResult) string {
	if len(result.Stdout) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintln(&b, "Output:")
	b.Write(result.Stdout)
	if result.Truncated {
		fmt.Fprintln(&b, "(output truncated)")
	}
	return b.String()
}

func itemContent(it output.Item) mcp.Content {
	switch it.Kind {
	case output.Audio:
		return &mcp.AudioContent{Data: it.Data, MIMEType: it.MIMEType}
	case output.Image:
		return &mcp.ImageContent{Data: it.Data, MIMEType: it.MIMEType}
	default:
		return &mcp.TextContent{Text: it.String()}
	}
}
