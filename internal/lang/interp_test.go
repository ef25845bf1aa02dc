package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// run evaluates src and renders the resulting stack, bottom first.
func run(t *testing.T, src string, opts ...Option) ([]string, error) {
	t.Helper()
	i := New(opts...)
	if err := i.Run(context.Background(), src); err != nil {
		return nil, err
	}
	var out []string
	for _, v := range i.TakeStack() {
		out = append(out, v.String())
	}
	return out, nil
}

func TestRun_Stack(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"1 2 3", []string{"3", "2", "1"}},
		{"+ 1 2", []string{"3"}},
		{"- 3 10", []string{"7"}},
		{"÷ 2 10", []string{"5"}},
		{"+. 3", []string{"6"}},
		{"[, 1 2]", []string{"[2 1 2]"}},
		{"[: 1 2]", []string{"[2 1]"}},
		{"◌ 1 2", []string{"2"}},
		{"¯ 5", []string{"¯5"}},
		{"¯5", []string{"¯5"}},
		{"¯ \"Hello\"", []string{`"hELLO"`}},
		{"+ 1 @a", []string{"@b"}},
		{"- @a @c", []string{"2"}},
		{"◿ 3 ¯1", []string{"2"}},
		{"+ 1 [1 2 3]", []string{"[2 3 4]"}},
		{"× [1 2] [[1 2] [3 4]]", []string{"╭─\n╷ 1 2\n  6 8\n╯"}},
		{"< 2 [1 2 3]", []string{"[1 0 0]"}},
		{"= \"hello\" \"world\"", []string{"[0 0 0 1 0]"}},
		{"⇡ 5", []string{"[0 1 2 3 4]"}},
		{"⧻ [1 2 3]", []string{"3"}},
		{"△ [[1 2 3] [4 5 6]]", []string{"[2 3]"}},
		{"⍉ [[1 2 3] [4 5 6]]", []string{"╭─\n╷ 1 4\n  2 5\n  3 6\n╯"}},
		{"⍏ [6 2 7 0]", []string{"[3 1 0 2]"}},
		{"⍖ [6 2 7 0]", []string{"[2 0 1 3]"}},
		{"⊏ ⍏ . [6 2 7 0]", []string{"[0 2 6 7]"}},
		{"⊚ [1 0 2]", []string{"[0 2 2]"}},
		{"◴ [3 1 3 2 1]", []string{"[3 1 2]"}},
		{"⊂ 1 [2 3]", []string{"[1 2 3]"}},
		{"⊂ \"ab\" @c", []string{`"abc"`}},
		{"⊟ 1 2", []string{"[1 2]"}},
		{"↯ [2 3] ⇡ 6", []string{"╭─\n╷ 0 1 2\n  3 4 5\n╯"}},
		{"↙ ¯2 [1 2 3 4]", []string{"[3 4]"}},
		{"↘ 2 [1 2 3 4]", []string{"[3 4]"}},
		{"↻ ¯1 [1 2 3 4]", []string{"[4 1 2 3]"}},
		{"⊏ [0 2] \"hello\"", []string{`"hl"`}},
		{"⊡ [1 0] [[1 2] [3 4]]", []string{"3"}},
		{"▽ > 2 . [1 5 2 8]", []string{"[5 8]"}},
		{"≍ [1 2] [1 2]", []string{"1"}},
		{"/+ [1 2 3 4]", []string{"10"}},
		{"/- [1 2 3 4 5]", []string{"3"}},
		{"/+ []", []string{"0"}},
		{"\\+ [1 2 3 4]", []string{"[1 3 6 10]"}},
		{"∵ (×2) [1 2 3]", []string{"[2 4 6]"}},
		{"≡ /+ [[1 2] [3 4]]", []string{"[3 7]"}},
		{"⊞ + [10 20] [1 2 3]", []string{"╭─\n╷ 11 12 13\n  21 22 23\n╯"}},
		{"⍥ (×2) 5 1", []string{"32"}},
		{"⊙ + 1 2 3", []string{"5", "1"}},
		{"reverse [1 2 3]", []string{"[3 2 1]"}},
		{"rev [1 2 3]", []string{"[3 2 1]"}},
		{"* 3 4", []string{"12"}},
		{"X ← + 1\nX 2", []string{"3"}},
		{"1 # comment\n2", []string{"1", "2"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("Run(%q): %v", tt.src, err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("stack = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"+ 1", "stack was empty when evaluating add"},
		{"+ [1 2] [1 2 3]", "not compatible"},
		{"\"abc", "unterminated string literal"},
		{"[1 2", "unclosed ["},
		{"foo 1", "unknown identifier foo"},
		{"↙ 5 [1 2]", "cannot take 5 rows"},
		{"⊏ 3 [1 2]", "out of bounds"},
		{"+ @a @b", "cannot add character and character"},
		{"$", "unexpected character"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, tt.src)
			if err == nil {
				t.Fatalf("Run(%q) succeeded, want error", tt.src)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err, tt.want)
			}
		})
	}
}

func TestRun_ErrorPosition(t *testing.T) {
	_, err := run(t, "1\n+ 1")
	var posErr *Error
	if !errors.As(err, &posErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if posErr.Pos.Line != 2 {
		t.Errorf("Pos.Line = %d, want 2", posErr.Pos.Line)
	}
}

func TestRun_ExperimentalGate(t *testing.T) {
	_, err := run(t, "⧆ [1 1]")
	if err == nil || !strings.Contains(err.Error(), "experimental") {
		t.Fatalf("error = %v, want experimental error", err)
	}

	got, err := run(t, ExperimentalMarker+"\n⧆ [1 2 1 1 2]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "[0 0 1 2 1]" {
		t.Errorf("stack = %q, want [0 0 1 2 1]", got)
	}

	got, err = run(t, "stringify (+1)", WithExperimental(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != `"+1"` {
		t.Errorf("stack = %q, want \"+1\"", got)
	}
}

func TestRun_ExecutionLimit(t *testing.T) {
	start := time.Now()
	_, err := run(t, "⍥ (+1) ∞ 0", WithExecutionLimit(50*time.Millisecond))
	if !errors.Is(err, ErrTimeLimit) {
		t.Fatalf("error = %v, want ErrTimeLimit", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("run took %s, want prompt abort", elapsed)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New().Run(ctx, "+ 1 2")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRun_SafeSys(t *testing.T) {
	var buf bytes.Buffer
	i := New(WithSys(NewSafeSys(&buf)))
	if err := i.Run(context.Background(), `&p "hi" &p 5`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "5\nhi\n" {
		t.Errorf("printed %q, want %q", buf.String(), "5\nhi\n")
	}

	err := New().Run(context.Background(), `&fras "/etc/passwd"`)
	if !errors.Is(err, ErrSafeMode) {
		t.Fatalf("error = %v, want ErrSafeMode", err)
	}
}

func TestRun_TooLarge(t *testing.T) {
	_, err := run(t, "↯ [100000 100000] 1")
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("error = %v, want too large", err)
	}
}
