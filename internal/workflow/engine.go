// Package workflow provides the execution engine shared by the MCP
// server and the CLI: run code, render docs and build playground links.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deixis/glyphrun/internal/config"
	"github.com/deixis/glyphrun/internal/glyphs"
	"github.com/deixis/glyphrun/internal/logging"
	"github.com/deixis/glyphrun/internal/output"
	"github.com/deixis/glyphrun/internal/render"
	"github.com/deixis/glyphrun/internal/runner"
	"github.com/google/uuid"
)

// CodeRunner executes code and returns its stack.
// Implemented by runner.Runner.
type CodeRunner interface {
	Run(ctx context.Context, code string) (*runner.Result, error)
}

// ErrEmptyCode is returned by Run when there is nothing to execute.
var ErrEmptyCode = errors.New("cannot run empty code")

// ExecutionError reports any failure of the interpreter: parse, runtime
// or timeout.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("Error while running: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Engine holds shared dependencies for all workflow operations.
type Engine struct {
	Config     *config.Config
	Runner     CodeRunner
	Classifier *output.Classifier
	Renderer   *render.Renderer
	Logger     *slog.Logger
}

// NewEngine wires the default runner, classifier and renderer from cfg.
func NewEngine(cfg *config.Config, table *glyphs.Table, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		Config: cfg,
		Runner: &runner.Runner{
			Timeout:   cfg.Timeout(),
			MaxOutput: cfg.MaxOutputBytes(),
		},
		Classifier: output.NewClassifier(cfg),
		Renderer:   render.New(cfg, table),
		Logger:     logger,
	}
}

// RunResult is the outcome of a successful run.
type RunResult struct {
	ID        string
	Items     []output.Item
	Stdout    []byte
	Truncated bool // Stdout hit its size cap
}

// Run executes code and classifies the values it leaves on the stack, in
// stack order. At most MaxValues values are shown; the rest are counted
// by a trailing Continuation item.
func (e *Engine) Run(ctx context.Context, code string) (*RunResult, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}

	id := uuid.New().String()
	ctx = logging.WithRunID(ctx, id)
	log := e.Logger

	start := time.Now()
	log.DebugContext(ctx, "run started", "bytes", len(code))

	res, err := e.Runner.Run(ctx, code)
	if err != nil {
		log.InfoContext(ctx, "run failed", "error", err, "elapsed", time.Since(start))
		return nil, &ExecutionError{Err: err}
	}

	stack := res.Stack
	var hidden int
	if limit := e.Config.MaxValues(); len(stack) > limit {
		hidden = len(stack) - limit
		stack = stack[:limit]
	}

	items := make([]output.Item, 0, len(stack)+1)
	for _, v := range stack {
		items = append(items, e.Classifier.Classify(v))
	}
	if hidden > 0 {
		items = append(items, output.ContinuationItem(hidden))
	}

	log.InfoContext(ctx, "run finished",
		"values", len(res.Stack),
		"items", len(items),
		"stdout_truncated", res.Truncated,
		"elapsed", time.Since(start),
	)
	return &RunResult{
		ID:        res.RunID,
		Items:     items,
		Stdout:    res.Stdout,
		Truncated: res.Truncated,
	}, nil
}

// Docs renders documentation for a primitive name, glyph or spelling.
func (e *Engine) Docs(token string) string {
	return e.Renderer.Docs(token)
}

// Pad formats code and returns its playground link markup.
func (e *Engine) Pad(code string) (string, error) {
	return e.Renderer.FormatAndLink(code)
}
