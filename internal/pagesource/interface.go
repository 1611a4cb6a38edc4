package pagesource

import "context"

// Source yields the readable text of a page and the language it is written
// in.
type Source interface {
	PageText(ctx context.Context) (string, error)
	PageLanguage(ctx context.Context) (string, error)
}
