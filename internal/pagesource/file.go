package pagesource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/nguyentantai21042004/pagedigest/pkg/executor"
)

// MinTextLength is the shortest page text, in characters, worth summarizing.
const MinTextLength = 50

var (
	ErrPageTooShort    = errors.New("page content too short")
	ErrUnsupportedPage = errors.New("unsupported page format")
)

var htmlLangRe = regexp.MustCompile(`(?i)<html[^>]*\slang\s*=\s*["']?([a-z]{2,3}(?:[-_][a-z0-9]+)*)`)

// Extensions lists the page formats NewFile understands.
var Extensions = []string{".txt", ".md", ".html", ".htm", ".pdf"}

// IsPage reports whether path has a supported page extension.
func IsPage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

type fileSource struct {
	path        string
	exec        executor.Executor
	defaultLang string

	mu     sync.Mutex
	loaded bool
	text   string
	lang   string
	err    error
}

// NewFile returns a Source reading the page stored at path. PDF pages are
// converted with pdftotext through exec. Pages without a declared language
// report defaultLang.
func NewFile(path string, exec executor.Executor, defaultLang string) Source {
	if defaultLang == "" {
		defaultLang = "en"
	}
	return &fileSource{path: path, exec: exec, defaultLang: defaultLang}
}

func (s *fileSource) PageText(ctx context.Context) (string, error) {
	if err := s.load(ctx); err != nil {
		return "", err
	}
	if utf8.RuneCountInString(s.text) < MinTextLength {
		return "", fmt.Errorf("%w (%d chars, need %d+)", ErrPageTooShort, utf8.RuneCountInString(s.text), MinTextLength)
	}
	return s.text, nil
}

func (s *fileSource) PageLanguage(ctx context.Context) (string, error) {
	if err := s.load(ctx); err != nil {
		return "", err
	}
	return s.lang, nil
}

func (s *fileSource) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.err
	}

	s.text, s.lang, s.err = s.read(ctx)
	s.text = strings.TrimSpace(s.text)
	if s.lang == "" {
		s.lang = s.defaultLang
	}
	// A cancelled read may succeed next time.
	s.loaded = s.err == nil || ctx.Err() == nil
	return s.err
}

func (s *fileSource) read(ctx context.Context) (text, lang string, err error) {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(s.path)
		if err != nil {
			return "", "", fmt.Errorf("read page: %w", err)
		}
		return string(data), "", nil

	case ".html", ".htm":
		data, err := os.ReadFile(s.path)
		if err != nil {
			return "", "", fmt.Errorf("read page: %w", err)
		}
		return extractHTML(data, s.path)

	case ".pdf":
		if s.exec == nil {
			return "", "", fmt.Errorf("%w: no executor for pdf", ErrUnsupportedPage)
		}
		out, err := s.exec.Execute(ctx, "pdftotext", "-layout", s.path, "-")
		if err != nil {
			return "", "", fmt.Errorf("convert pdf: %w", err)
		}
		return out, "", nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedPage, filepath.Ext(s.path))
}

func extractHTML(data []byte, path string) (string, string, error) {
	var lang string
	if m := htmlLangRe.FindSubmatch(data); m != nil {
		lang = strings.ReplaceAll(string(m[1]), "_", "-")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	article, err := readability.FromReader(bytes.NewReader(data), &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)})
	if err != nil {
		return "", "", fmt.Errorf("extract article: %w", err)
	}
	text := article.TextContent
	if title := strings.TrimSpace(article.Title); title != "" && !strings.HasPrefix(strings.TrimSpace(text), title) {
		text = title + "\n\n" + text
	}
	return text, lang, nil
}
