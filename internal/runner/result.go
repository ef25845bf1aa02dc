package runner

import "github.com/deixis/glyphrun/internal/lang"

// Result holds the outcome of a successful run.
type Result struct {
	RunID     string       // unique identifier for this run
	Stack     []lang.Value // values left on the stack, bottom first
	Stdout    []byte       // printed output (may be truncated)
	Truncated bool         // true if printed output exceeded the size cap
}
