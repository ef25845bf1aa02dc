// Package runner executes untrusted code in a fresh interpreter with a
// safe system profile, a wall-clock limit and a cap on printed output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deixis/glyphrun/internal/lang"
	"github.com/deixis/glyphrun/internal/logging"
	"github.com/google/uuid"
)

// ExperimentalPrefix is prepended to every program so experimental
// primitives are available.
const ExperimentalPrefix = lang.ExperimentalMarker + "\n"

// ErrTimeout is returned when a run exceeds the execution limit.
var ErrTimeout = errors.New("maximum execution time exceeded")

// Interpreter is the part of the interpreter the runner drives.
type Interpreter interface {
	Run(ctx context.Context, src string) error
	TakeStack() []lang.Value
}

// Factory builds a new interpreter for a single run.
type Factory func(sys lang.SysBackend, limit time.Duration) Interpreter

// DefaultFactory builds the embedded interpreter.
func DefaultFactory(sys lang.SysBackend, limit time.Duration) Interpreter {
	return lang.New(lang.WithSys(sys), lang.WithExecutionLimit(limit))
}

// Runner executes code under a time limit.
type Runner struct {
	Timeout   time.Duration
	MaxOutput int // bytes of printed output kept
	Factory   Factory
}

type outcome struct {
	stack []lang.Value
	err   error
}

// Run executes code and returns the resulting stack, bottom value first.
// The run ID is taken from ctx when set. Every call uses a new interpreter. An interpreter that overruns the
// limit is abandoned.
func (r *Runner) Run(ctx context.Context, code string) (*Result, error) {
	factory := r.Factory
	if factory == nil {
		factory = DefaultFactory
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.New().String()
	}

	var stdout bytes.Buffer
	sys := lang.NewSafeSys(&limitWriter{buf: &stdout, limit: r.MaxOutput})
	interp := factory(sys, r.Timeout)

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("interpreter panic: %v", p)}
			}
		}()
		err := interp.Run(ctx, ExperimentalPrefix+code)
		var stack []lang.Value
		if err == nil {
			stack = interp.TakeStack()
		}
		done <- outcome{stack: stack, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		// The worker may still be writing to stdout; it is not read.
		return nil, r.contextError(ctx)
	}

	if out.err != nil {
		if errors.Is(out.err, lang.ErrTimeLimit) || errors.Is(out.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w (limit %s)", ErrTimeout, r.Timeout)
		}
		return nil, unshiftLine(out.err)
	}

	return &Result{
		RunID:     runID,
		Stack:     out.stack,
		Stdout:    stdout.Bytes(),
		Truncated: r.MaxOutput > 0 && stdout.Len() >= r.MaxOutput,
	}, nil
}

func (r *Runner) contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w (limit %s)", ErrTimeout, r.Timeout)
	}
	return ctx.Err()
}

// unshiftLine maps error positions back onto the caller's code, which
// starts one line after the experimental prefix.
func unshiftLine(err error) error {
	var posErr *lang.Error
	if errors.As(err, &posErr) && posErr.Pos.Line > 1 {
		posErr.Pos.Line--
	}
	return err
}

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// so the interpreter does not fail on a short write.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
