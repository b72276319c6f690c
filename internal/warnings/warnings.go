// Package warnings accumulates recoverable per-file failures so that a stage
// can keep going and the user sees every problem at the end of a run.
package warnings

import (
	"fmt"
	"strings"
	"sync"
)

// Warning is a single non-fatal problem produced by a stage.
type Warning struct {
	// Scope names the stage or component that produced the warning.
	Scope string
	// Message describes the problem, usually "<path>: <error>".
	Message string
}

// String renders the warning as "scope: message".
func (w Warning) String() string {
	if w.Scope == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Scope, w.Message)
}

// Log is an ordered, concurrency-safe collection of warnings. The zero value
// is ready to use.
type Log struct {
	mu      sync.Mutex
	entries []Warning
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Add appends a warning.
func (l *Log) Add(scope, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Warning{Scope: scope, Message: message})
}

// Addf appends a formatted warning.
func (l *Log) Addf(scope, format string, args ...interface{}) {
	l.Add(scope, fmt.Sprintf(format, args...))
}

// AddError records err against path. A nil err is ignored.
func (l *Log) AddError(scope, path string, err error) {
	if err == nil {
		return
	}
	if path == "" {
		l.Add(scope, err.Error())
		return
	}
	l.Add(scope, fmt.Sprintf("%s: %v", path, err))
}

// Merge appends every entry of other, keeping its order. A nil other is a no-op.
func (l *Log) Merge(other *Log) {
	if other == nil || other == l {
		return
	}
	entries := other.Entries()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entries...)
}

// Entries returns a copy of the warnings in insertion order.
func (l *Log) Entries() []Warning {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Warning, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of warnings.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Empty reports whether no warnings were recorded.
func (l *Log) Empty() bool {
	return l.Len() == 0
}

// String renders one warning per line.
func (l *Log) String() string {
	var b strings.Builder
	for _, w := range l.Entries() {
		b.WriteString(w.String())
		b.WriteString("\n")
	}
	return b.String()
}
