package sitetests

import "sync"

// Outcome collects the names of failed tests across a build.
type Outcome struct {
	mu     sync.Mutex
	failed []string
}

// Fail records a failed test.
func (o *Outcome) Fail(test string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, test)
}

// Failed reports whether any test failed.
func (o *Outcome) Failed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.failed) > 0
}

// FailedTests returns the failed test names in the order they failed.
func (o *Outcome) FailedTests() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.failed...)
}
