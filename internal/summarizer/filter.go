package summarizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minSentenceLen    = 20
	maxFilteredLen    = 50000
	minParagraphLen   = 50
	maxFallbackPicks  = 5
	truncatedEllipsis = "..."
)

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)cookie\s+policy`),
	regexp.MustCompile(`(?i)privacy\s+policy`),
	regexp.MustCompile(`(?i)terms\s+of\s+service`),
	regexp.MustCompile(`(?i)click\s+here`),
	regexp.MustCompile(`(?i)read\s+more`),
	regexp.MustCompile(`(?i)continue\s+reading`),
	regexp.MustCompile(`(?i)subscribe\s+to\s+our\s+newsletter`),
	regexp.MustCompile(`(?i)follow\s+us\s+on`),
	regexp.MustCompile(`(?i)share\s+this`),
	regexp.MustCompile(`(?i)(\bcopyright|©|®|™)\s+\d{4}`),
	regexp.MustCompile(`(?i)all\s+rights\s+reserved`),
}

var (
	reBlankLine = regexp.MustCompile(`\n\s*\n`)
	reSentence  = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// collapse replaces every whitespace run with a single space.
func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences splits collapsed text after each run of terminators that
// is followed by a space. Terminators stay with their sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		j := i
		for j+1 < len(text) && isTerminator(text[j+1]) {
			j++
		}
		if j+1 < len(text) && text[j+1] == ' ' {
			out = append(out, text[start:j+1])
			start = j + 2
		}
		i = j
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isBoilerplate(sentence string) bool {
	for _, re := range boilerplatePatterns {
		if re.MatchString(sentence) {
			return true
		}
	}
	return false
}

// filterBoilerplate drops short and navigation-like sentences from text.
// When nothing survives it returns the collapsed text so callers always
// have something to work with.
func filterBoilerplate(text string) string {
	cleaned := collapse(text)
	if cleaned == "" {
		return ""
	}

	var kept []string
	for _, s := range splitSentences(cleaned) {
		s = strings.TrimSpace(s)
		if len(s) < minSentenceLen || isBoilerplate(s) {
			continue
		}
		kept = append(kept, s)
	}

	out := strings.Join(kept, " ")
	if out == "" {
		out = cleaned
	}
	return cutRunes(out, maxFilteredLen)
}

// paragraphs returns the substantive paragraphs of text. Text without blank
// lines is split into sentences instead.
func paragraphs(text string) []string {
	parts := reBlankLine.Split(strings.TrimSpace(text), -1)
	if len(parts) < 3 {
		parts = splitSentences(collapse(text))
	}

	var out []string
	for _, p := range parts {
		p = collapse(p)
		if len(p) > minParagraphLen {
			out = append(out, p)
		}
	}
	return out
}

// truncate keeps the opening 30%, centred 40% and closing 30% of the
// paragraphs of text and caps the result at budget bytes, ending on the
// last complete sentence when there is one.
func truncate(text string, budget int) string {
	if len(text) <= budget {
		return collapse(text)
	}

	paras := paragraphs(text)
	if len(paras) == 0 {
		return cutAtSentence(collapse(text), budget)
	}

	n := len(paras)
	intro := max(1, n*3/10)
	middle := max(1, n*4/10)
	outro := max(1, n*3/10)

	var idx []int
	for i := 0; i < intro && i < n; i++ {
		idx = append(idx, i)
	}
	for i := max(0, n/2-middle/2); i < n/2+(middle+1)/2 && i < n; i++ {
		idx = append(idx, i)
	}
	for i := max(0, n-outro); i < n; i++ {
		idx = append(idx, i)
	}

	seenIdx := make(map[int]bool, len(idx))
	seenText := make(map[string]bool, len(idx))
	var selected []string
	for _, i := range idx {
		if seenIdx[i] || seenText[paras[i]] {
			continue
		}
		seenIdx[i] = true
		seenText[paras[i]] = true
		selected = append(selected, paras[i])
	}

	return cutAtSentence(strings.Join(selected, "\n\n"), budget)
}

// cutAtSentence shortens text to at most budget bytes, preferring to end
// after a sentence terminator and then at a space.
func cutAtSentence(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	cut := cutRunes(text, budget)
	if i := strings.LastIndexAny(cut, ".!?"); i > 0 {
		return cut[:i+1]
	}
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		return cut[:i]
	}
	return cut
}

// extractive picks up to five leading sentences of text that fit in
// maxLen bytes, or hard-truncates when no sentence fits. An ellipsis marks
// output shorter than the cleaned input.
func extractive(text string, maxLen int) string {
	cleaned := collapse(text)
	if cleaned == "" {
		return ""
	}

	var summary string
	for i, s := range reSentence.FindAllString(cleaned, -1) {
		if i == maxFallbackPicks {
			break
		}
		candidate := strings.TrimSpace(s)
		if summary != "" {
			candidate = summary + " " + candidate
		}
		if len(candidate) > maxLen {
			break
		}
		summary = candidate
	}

	if summary == "" {
		summary = strings.TrimSpace(cutRunes(cleaned, maxLen))
	}
	if len(summary) < len(cleaned) {
		summary += truncatedEllipsis
	}
	return summary
}

// cutRunes returns at most n bytes of s without splitting a rune.
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
