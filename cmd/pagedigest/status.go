package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/spf13/cobra"
)

// printStatus renders progress updates on w, one line per update.
func printStatus(w io.Writer) ai.StatusFunc {
	return func(s ai.Status) {
		fmt.Fprintln(w, formatStatus(s))
	}
}

func formatStatus(s ai.Status) string {
	line := fmt.Sprintf("[%s] %s", s.Stage, s.Message)
	if s.Ratio != nil {
		line += fmt.Sprintf(" (%.0f%%)", *s.Ratio*100)
	}
	return line
}

func statusCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show availability of the model, summarizer, translator and page tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := newApp(ctx, *cfgPath, nil)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider:    %s\n", a.cfg.Provider.Kind)
			fmt.Fprintf(out, "Session:     %s\n", a.manager.CheckAvailability(ctx))
			if err := a.manager.LastError(); err != nil {
				fmt.Fprintf(out, "             %s\n", err)
			}

			avail, err := a.summarizers.Availability(ctx)
			fmt.Fprintf(out, "Summarizer:  %s%s\n", avail, errSuffix(err))

			if target := a.cfg.Translation.TargetLanguage; target != "" {
				avail, err := a.translators.Availability(ctx, "en", target)
				fmt.Fprintf(out, "Translator:  %s (en -> %s)%s\n", avail, target, errSuffix(err))
			} else {
				fmt.Fprintln(out, "Translator:  disabled (no translation.target_language)")
			}

			if a.exec.Available("pdftotext") {
				fmt.Fprintln(out, "pdftotext:   available")
			} else {
				fmt.Fprintln(out, "pdftotext:   missing, PDF pages cannot be read")
			}

			if at, ok := a.manager.Attempt(); ok {
				fmt.Fprintf(out, "Last download attempt: #%d started %s\n", at.Number, at.StartedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func errSuffix(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf(" (%v)", err)
}
