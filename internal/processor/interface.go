package processor

import (
	"context"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

// Processor turns page files into summary documents.
type Processor interface {
	// Process summarizes pagePath with the configured options and archives
	// the source. It is the watcher's event handler.
	Process(ctx context.Context, pagePath string) error
	Summarize(ctx context.Context, pagePath string, opts Options) (Result, error)
}

type Options struct {
	Exhaustive bool
	Docx       bool
	// Archive moves the source page to the archived folder once the summary
	// is written.
	Archive  bool
	OnStatus ai.StatusFunc
}

type Result struct {
	Summary  string
	Language string // language the summary is written in
	Markdown string // path of the written .md file
	Docx     string // path of the written .docx file, if any
}
