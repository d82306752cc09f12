package sandbox

import (
	"strings"
	"time"
)

// Config defines sandbox configuration
type Config struct {
	// Timeout bounds a single execution; 0 disables the interrupt timer.
	Timeout time.Duration
}

// DefaultConfig returns the standard sandbox configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
	}
}

// Outcome holds the result of one execution. Execution failures land here,
// never as a Go error to the caller.
type Outcome struct {
	Value    any           // value of the final expression, if any
	Lines    []string      // captured output, in log order
	Failed   bool          // true when execution raised
	Err      string        // failure description when Failed
	Duration time.Duration // wall time of the execution
}

// Text renders the captured lines as the output pane text.
func (o *Outcome) Text() string {
	return strings.Join(o.Lines, "\n")
}

// Bindings maps identifiers to the values addressable by executed source.
// The "console" name is reserved: the runtime injects its capturing logging
// facade under it and ignores any caller-supplied entry.
type Bindings map[string]any
