// Package runner executes build modules sequentially.
//
// Modules run one at a time in run-pool order. Each module's start and end
// are printed with its elapsed time, followed by a total line once every
// module has finished. The first failing module aborts the build: later
// modules are not started and the total line is not printed.
package runner
