package lang

import (
	"errors"
	"fmt"
)

// ErrSafeMode is returned by system operations the safe backend refuses.
var ErrSafeMode = errors.New("not available in safe mode")

// ErrTimeLimit is returned when a run exceeds its execution limit.
var ErrTimeLimit = errors.New("maximum execution time exceeded")

// Pos is a 1-based line and column in the source.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is an interpreter error tied to a source position.
type Error struct {
	Err error
	Pos Pos
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s at %s", e.Err, e.Pos)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// withPos attaches pos to err unless it already carries a position.
func withPos(err error, pos Pos) error {
	if err == nil {
		return nil
	}
	var posErr *Error
	if errors.As(err, &posErr) {
		return err
	}
	return &Error{Err: err, Pos: pos}
}

func errorf(pos Pos, format string, args ...any) error {
	return &Error{Err: fmt.Errorf(format, args...), Pos: pos}
}
