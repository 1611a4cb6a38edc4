package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/pagesource"
	"github.com/nguyentantai21042004/pagedigest/internal/summarizer"
)

var ErrEmptySummary = errors.New("summary is empty")

// Process runs the configured pipeline for a page dropped into the input
// folder.
func (p *implProcessor) Process(ctx context.Context, pagePath string) error {
	_, err := p.Summarize(ctx, pagePath, Options{
		Exhaustive: p.cfg.Summarizer.Exhaustive,
		Docx:       p.cfg.Output.Docx,
		Archive:    true,
	})
	return err
}

// Summarize orchestrates loading, summarizing, translating and writing one page
func (p *implProcessor) Summarize(ctx context.Context, pagePath string, opts Options) (Result, error) {
	startTime := time.Now()
	name := strings.TrimSuffix(filepath.Base(pagePath), filepath.Ext(pagePath))

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting page processing: %s", pagePath)
	p.logger.Info(ctx, "========================================")

	// Step 1: Load page text
	src := pagesource.NewFile(pagePath, p.executor, pagesource.DefaultOutputLanguage)
	opts.OnStatus.Emit("loading", "Reading page...", nil)
	text, err := src.PageText(ctx)
	if err != nil {
		if errors.Is(err, pagesource.ErrPageTooShort) {
			p.metrics.PageProcessed("rejected")
		} else {
			p.metrics.PageProcessed("failed")
		}
		return Result{}, fmt.Errorf("load page: %w", err)
	}
	pageLang, _ := src.PageLanguage(ctx)
	outLang := pagesource.OutputLanguage(pageLang, p.cfg.Summarizer.OutputLanguages)
	p.logger.Info(ctx, "Page language: %s, summary language: %s", pageLang, outLang)

	// Step 2: Summarize and translate while holding a model slot
	if err := p.slots.acquire(ctx); err != nil {
		p.metrics.PageProcessed("failed")
		return Result{}, fmt.Errorf("wait for model slot: %w", err)
	}
	handle := p.handle(ctx, outLang, opts.OnStatus)
	summary := p.pipeline.Summarize(ctx, text, handle, summarizer.Options{
		Exhaustive: opts.Exhaustive,
		OnStatus:   opts.OnStatus,
	})
	summaryLang := outLang
	if target := p.cfg.Translation.TargetLanguage; target != "" && p.translator != nil && summary != "" {
		opts.OnStatus.Emit("translating", "Translating summary...", nil)
		summary = p.translator.Translate(ctx, summary, outLang, target)
		summaryLang = target
	}
	p.slots.release()

	if strings.TrimSpace(summary) == "" {
		p.metrics.PageProcessed("failed")
		return Result{}, ErrEmptySummary
	}

	// Step 3: Write summary documents
	res := Result{Summary: summary, Language: summaryLang}
	res.Markdown, err = p.writeMarkdown(ctx, name, summary)
	if err != nil {
		p.metrics.PageProcessed("failed")
		return Result{}, fmt.Errorf("write summary: %w", err)
	}
	if opts.Docx {
		docxPath := filepath.Join(p.cfg.Paths.Output, name+".docx")
		if err := markdownToDocx(name, summary, docxPath); err != nil {
			p.logger.Warn(ctx, "Failed to write DOCX %s: %v", docxPath, err)
		} else {
			res.Docx = docxPath
		}
	}

	// Step 4: Move the page to the archived folder
	if opts.Archive {
		if err := p.moveToArchived(ctx, pagePath); err != nil {
			p.logger.Warn(ctx, "Failed to move page to archived folder: %v", err)
		}
	}

	p.metrics.PageProcessed("success")
	opts.OnStatus.Emit("done", "Summary ready", ai.Ratio(1))

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Output summary: %s", res.Markdown)
	if res.Docx != "" {
		p.logger.Info(ctx, "Output document: %s", res.Docx)
	}
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return res, nil
}

// handle returns a cached summarizer for lang, creating it on first use. It
// returns nil when no summarizer can be created. A model that still has to be
// downloaded yields nil too; downloads belong to the session manager.
func (p *implProcessor) handle(ctx context.Context, lang string, status ai.StatusFunc) ai.Summarizer {
	if p.summarizers == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.handles[lang]; ok {
		return h
	}

	avail, err := p.summarizers.Availability(ctx)
	switch {
	case err != nil || avail == ai.Unavailable:
		p.logger.Warn(ctx, "Summarizer unavailable (%s, %v), using extractive fallback", avail, err)
		return nil
	case avail == ai.Downloading:
		p.logger.Info(ctx, "AI model is downloading, using extractive fallback")
		status.Emit("downloading", "AI model is downloading, using a basic summary for now", nil)
		return nil
	case avail != ai.Available:
		p.logger.Info(ctx, "AI model is not downloaded (%s), using extractive fallback", avail)
		status.Emit("downloadable", "AI model not downloaded yet, run ask to download it", nil)
		return nil
	}

	h, err := p.summarizers.Create(ctx, ai.SummarizerConfig{
		Type:           p.cfg.Summarizer.Type,
		Format:         p.cfg.Summarizer.Format,
		Length:         p.cfg.Summarizer.Length,
		OutputLanguage: lang,
		SharedContext:  p.cfg.Summarizer.SharedContext,
	})
	if err != nil || h == nil {
		p.logger.Warn(ctx, "Failed to create summarizer for %s: %v", lang, err)
		return nil
	}
	p.handles[lang] = h
	return h
}
