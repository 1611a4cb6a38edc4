package pagesource

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// DefaultOutputLanguage is used when a page language is not supported for
// output.
const DefaultOutputLanguage = "en"

// BaseLanguage returns the primary language subtag of tag, for example "pt"
// for "pt-BR". Unparseable tags fall back to their first subtag.
func BaseLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(tag); err == nil {
		base, _ := t.Base()
		return base.String()
	}
	tag = strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
	base, _, _ := strings.Cut(tag, "-")
	return base
}

// OutputLanguage picks the summary language for a page written in tag.
func OutputLanguage(tag string, supported []string) string {
	base := BaseLanguage(tag)
	if base != "" && slices.Contains(supported, base) {
		return base
	}
	return DefaultOutputLanguage
}
