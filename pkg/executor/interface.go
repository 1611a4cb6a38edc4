package executor

import "context"

// Executor runs external tools such as pdftotext
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// Available reports whether name can be found on PATH.
	Available(name string) bool
}
