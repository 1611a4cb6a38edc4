package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/chunker"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"github.com/nguyentantai21042004/pagedigest/internal/pagesource"
	"github.com/nguyentantai21042004/pagedigest/internal/session"
	"github.com/spf13/cobra"
)

// activationWindow is how long running the command counts as a user trigger
// for starting a model download.
const activationWindow = 5 * time.Second

func askCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ask FILE QUESTION...",
		Short: "Ask a question about a page",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pagesource.IsPage(args[0]) {
				return fmt.Errorf("load page: %w: %s", pagesource.ErrUnsupportedPage, args[0])
			}

			a, err := newApp(cmd.Context(), *cfgPath, printStatus(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.close()

			q := question{
				src:        pagesource.NewFile(args[0], a.exec, pagesource.DefaultOutputLanguage),
				text:       strings.Join(args[1:], " "),
				budget:     a.cfg.Summarizer.TruncateBudget,
				maxRetries: a.cfg.Session.MaxRetries,
			}
			return q.ask(cmd.Context(), a.manager, a.log, cmd.OutOrStdout())
		},
	}
}

type question struct {
	src        pagesource.Source
	text       string
	budget     int
	maxRetries int
}

// ask grants the activation and calls EnsureReady before any other work, so
// slow page extraction cannot outlive the activation window.
func (q question) ask(ctx context.Context, m session.Manager, log logger.Logger, out io.Writer) error {
	ctx = ai.WithActivation(ctx, ai.Activation{GrantedAt: time.Now(), Window: activationWindow})
	res, err := m.EnsureReady(ctx)
	if err != nil {
		at, _ := m.Attempt()
		return fmt.Errorf("%s", session.UserMessage(err, at.Number, q.maxRetries))
	}
	if res.RetryCapExceeded {
		log.Warn(ctx, "Download succeeded after exceeding the retry limit")
	}

	page, err := q.src.PageText(ctx)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}

	_, err = m.Prompt(ctx, askPrompt(page, q.text, q.budget), func(chunk string) {
		fmt.Fprint(out, chunk)
	})
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("%s", session.UserMessage(err, 0, q.maxRetries))
	}
	return nil
}

// askPrompt embeds the leading budget bytes of page in a question prompt.
func askPrompt(page, question string, budget int) string {
	if budget > 0 {
		for c := range chunker.Chunks(page, budget, 0) {
			page = c.Text
			break
		}
	}
	return fmt.Sprintf("Page:\n---\n%s\n---\n\nQuestion: %s", page, question)
}
