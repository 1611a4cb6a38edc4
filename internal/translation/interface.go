package translation

import "context"

// Cache translates text between language pairs, creating one translator per
// ordered (source, target) pair on first use. Translate never fails: when no
// translator can be obtained or translation errors, the input is returned.
type Cache interface {
	Translate(ctx context.Context, text, source, target string) string
	Len() int
	Close() error
}
