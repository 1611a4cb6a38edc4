// Package chunker splits long text into overlapping windows that end on
// natural boundaries where possible.
package chunker

import (
	"iter"
	"strings"
	"unicode/utf8"
)

const (
	DefaultSize    = 3000
	DefaultOverlap = 200
)

// Chunk is one window of the source text. Start and End are byte offsets of
// the untrimmed window; Text is the trimmed content.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

var sentenceTerminators = []string{". ", ".\n", "! ", "? "}

// Split returns every chunk of text. See Chunks.
func Split(text string, size, overlap int) []Chunk {
	var out []Chunk
	for c := range Chunks(text, size, overlap) {
		out = append(out, c)
	}
	return out
}

// Chunks yields chunks of at most size bytes. Each window ends, in order of
// preference, after the last paragraph break, the last sentence terminator,
// the last space, or at size. The next window starts overlap bytes before
// the previous end, but always at least one byte after the previous start.
// Non-positive size or negative overlap fall back to the defaults.
// Windows holding only whitespace are skipped.
//
// The sequence is finite and may be ranged over more than once.
func Chunks(text string, size, overlap int) iter.Seq[Chunk] {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	return func(yield func(Chunk) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}
		if len(text) <= size {
			yield(Chunk{Index: 0, Start: 0, End: len(text), Text: strings.TrimSpace(text)})
			return
		}

		index := 0
		start := 0
		for start < len(text) {
			end := min(start+size, len(text))
			if end < len(text) {
				end = start + boundary(text[start:end])
				for end > start+1 && !utf8.RuneStart(text[end]) {
					end--
				}
			}

			if trimmed := strings.TrimSpace(text[start:end]); trimmed != "" {
				if !yield(Chunk{Index: index, Start: start, End: end, Text: trimmed}) {
					return
				}
				index++
			}

			if end >= len(text) {
				return
			}
			start = max(start+1, end-overlap)
			for start < end && !utf8.RuneStart(text[start]) {
				start++
			}
		}
	}
}

// boundary returns the preferred cut offset inside window. A match at
// offset zero is ignored so every chunk makes progress.
func boundary(window string) int {
	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return i + 2
	}

	best := -1
	for _, t := range sentenceTerminators {
		if i := strings.LastIndex(window, t); i > best {
			best = i
		}
	}
	if best > 0 {
		return best + 2
	}

	if i := strings.LastIndexByte(window, ' '); i > 0 {
		return i + 1
	}

	return len(window)
}

// EstimateTokens approximates the token count of text at four bytes per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
