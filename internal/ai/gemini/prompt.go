package gemini

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const summaryPrompt = `You are an expert at reading web pages, terms of service and policies.
Write a %s of the text the user provides.

Requirements:
- %s
- %s
- Write the answer in %s
- Respond with the summary only%s`

var summaryKinds = map[string]string{
	"tldr":       "short TL;DR summary",
	"key-points": "list of the key points",
	"teaser":     "teaser that makes the reader want to read on",
	"headline":   "single headline",
}

var summaryLengths = map[string]string{
	"short":  "Keep it very brief",
	"medium": "Keep it to about one paragraph or five bullet points",
	"long":   "Cover every important point, in the order they appear",
}

func systemPrompt(cfg ai.SummarizerConfig) string {
	kind, ok := summaryKinds[cfg.Type]
	if !ok {
		kind = summaryKinds["tldr"]
	}
	length, ok := summaryLengths[cfg.Length]
	if !ok {
		length = summaryLengths["medium"]
	}
	format := "Use plain text without Markdown"
	if cfg.Format == "markdown" {
		format = "Use Markdown: headings, bullet points, bold for key terms"
	}
	lang := "English"
	if cfg.OutputLanguage != "" {
		lang = languageName(cfg.OutputLanguage)
	}
	var extra string
	if cfg.SharedContext != "" {
		extra = "\n\n" + strings.TrimSpace(cfg.SharedContext)
	}
	return fmt.Sprintf(summaryPrompt, kind, length, format, lang, extra)
}

func translationPrompt(source, target string) string {
	return fmt.Sprintf("Translate the text the user provides from %s to %s. "+
		"Keep the formatting and respond with the translation only.",
		languageName(source), languageName(target))
}

func languageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return tag
}
