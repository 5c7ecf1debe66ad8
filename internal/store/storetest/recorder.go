// Package storetest provides an in-memory store.Session for tests.
package storetest

import (
	"context"
	"strings"
	"sync"
)

// Statement is one recorded Exec call.
type Statement struct {
	CQL  string
	Args []any
}

// Recorder is a store.Session that records every statement.
// FailOn makes Exec fail for statements containing a substring.
type Recorder struct {
	mu         sync.Mutex
	statements []Statement
	failures   []failure
}

type failure struct {
	contains  string
	err       error
	remaining int // <0 = forever
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Exec records the statement, or returns an injected error.
func (r *Recorder) Exec(ctx context.Context, stmt string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.failures {
		f := &r.failures[i]
		if f.remaining == 0 || !strings.Contains(stmt, f.contains) {
			continue
		}
		if f.remaining > 0 {
			f.remaining--
		}
		return f.err
	}

	r.statements = append(r.statements, Statement{CQL: stmt, Args: args})
	return nil
}

// FailOn makes every statement containing substr fail with err.
func (r *Recorder) FailOn(substr string, err error) {
	r.FailTimes(substr, err, -1)
}

// FailTimes makes the next n statements containing substr fail with err.
func (r *Recorder) FailTimes(substr string, err error, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure{contains: substr, err: err, remaining: n})
}

// Statements returns a copy of the recorded statements.
func (r *Recorder) Statements() []Statement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Statement, len(r.statements))
	copy(out, r.statements)
	return out
}

// Count returns how many recorded statements contain substr.
func (r *Recorder) Count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.statements {
		if strings.Contains(s.CQL, substr) {
			n++
		}
	}
	return n
}
