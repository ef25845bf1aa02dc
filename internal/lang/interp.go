package lang

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Interp evaluates source code. An Interp is not safe for concurrent use
// and is meant to be discarded after a run that exceeded its limit.
type Interp struct {
	sys          SysBackend
	limit        time.Duration
	experimental bool

	ctx      context.Context
	deadline time.Time
	stack    []Value
	bindings map[string][]item
}

// Option configures an Interp.
type Option func(*Interp)

// WithSys sets the system backend. The default is a safe backend that
// discards printed output.
func WithSys(sys SysBackend) Option {
	return func(i *Interp) { i.sys = sys }
}

// WithExecutionLimit bounds the wall-clock time of a single Run.
func WithExecutionLimit(d time.Duration) Option {
	return func(i *Interp) { i.limit = d }
}

// WithExperimental enables experimental primitives without the marker line.
func WithExperimental(enabled bool) Option {
	return func(i *Interp) { i.experimental = enabled }
}

// New returns an interpreter with an empty stack.
func New(opts ...Option) *Interp {
	i := &Interp{
		sys:      NewSafeSys(io.Discard),
		bindings: make(map[string][]item),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run parses and evaluates src, leaving its results on the stack.
func (i *Interp) Run(ctx context.Context, src string) error {
	lines, err := parse(src, i.experimental)
	if err != nil {
		return err
	}

	i.ctx = ctx
	i.deadline = time.Time{}
	if i.limit > 0 {
		i.deadline = time.Now().Add(i.limit)
	}
	for _, ln := range lines {
		if ln.binding != "" {
			i.bindings[ln.binding] = ln.items
			continue
		}
		if err := i.exec(ln.items); err != nil {
			return err
		}
	}
	return nil
}

// TakeStack removes and returns the stack, bottom value first.
func (i *Interp) TakeStack() []Value {
	stack := i.stack
	i.stack = nil
	return stack
}

// exec runs items right to left.
func (i *Interp) exec(items []item) error {
	for n := len(items) - 1; n >= 0; n-- {
		if err := i.call(&items[n]); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interp) call(it *item) error {
	if err := i.step(); err != nil {
		return withPos(err, it.pos)
	}
	switch it.kind {
	case itemPush:
		i.push(it.value)
	case itemPrim:
		var err error
		if it.prim.mod != nil {
			err = it.prim.mod(i, it.operand)
		} else {
			err = it.prim.fn(i)
		}
		return withPos(err, it.pos)
	case itemArray:
		height := len(i.stack)
		if err := i.exec(it.body); err != nil {
			return err
		}
		if len(i.stack) < height {
			return errorf(it.pos, "array construction consumed %d values from outside the array", height-len(i.stack))
		}
		pushed := i.stack[height:]
		rows := make([]Value, len(pushed))
		for n := range pushed {
			rows[n] = pushed[len(pushed)-1-n]
		}
		i.stack = i.stack[:height]
		v, err := fromRows(rows)
		if err != nil {
			return withPos(err, it.pos)
		}
		i.push(v)
	case itemFunc:
		return i.exec(it.body)
	case itemCall:
		body, ok := i.bindings[it.name]
		if !ok {
			return errorf(it.pos, "unknown identifier %s", it.name)
		}
		return i.exec(body)
	}
	return nil
}

// step checks the execution limit and cancellation.
func (i *Interp) step() error {
	if !i.deadline.IsZero() && time.Now().After(i.deadline) {
		return fmt.Errorf("%w: limit is %s", ErrTimeLimit, i.limit)
	}
	if i.ctx != nil {
		if err := i.ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interp) push(v Value) {
	i.stack = append(i.stack, v)
}

// pop removes the top value. name describes the consumer for errors.
func (i *Interp) pop(name string) (Value, error) {
	if len(i.stack) == 0 {
		return Value{}, fmt.Errorf("stack was empty when evaluating %s", name)
	}
	v := i.stack[len(i.stack)-1]
	i.stack = i.stack[:len(i.stack)-1]
	return v, nil
}

func (i *Interp) pop2(name string) (a, b Value, err error) {
	if a, err = i.pop(name); err != nil {
		return
	}
	b, err = i.pop(name)
	return
}

// apply calls f with the given values pushed, last argument on top, and
// returns the single value it leaves.
func (i *Interp) apply(f *item, args ...Value) (Value, error) {
	height := len(i.stack)
	for n := len(args) - 1; n >= 0; n-- {
		i.push(args[n])
	}
	if err := i.call(f); err != nil {
		return Value{}, err
	}
	if len(i.stack) != height+1 {
		return Value{}, fmt.Errorf("function must return exactly one value, got %d", len(i.stack)-height)
	}
	return i.pop("function result")
}
