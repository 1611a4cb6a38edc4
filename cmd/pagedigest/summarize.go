package main

import (
	"fmt"

	"github.com/nguyentantai21042004/pagedigest/internal/processor"
	"github.com/spf13/cobra"
)

func summarizeCMD(cfgPath *string) *cobra.Command {
	var exhaustive, docx, archive bool

	cmd := &cobra.Command{
		Use:   "summarize FILE...",
		Short: "Summarize page files (.txt, .md, .html, .pdf)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath, printStatus(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.close()

			opts := processor.Options{
				Exhaustive: exhaustive || a.cfg.Summarizer.Exhaustive,
				Docx:       docx || a.cfg.Output.Docx,
				Archive:    archive,
				OnStatus:   printStatus(cmd.ErrOrStderr()),
			}

			var failed int
			for _, path := range args {
				res, err := a.processor.Summarize(ctx, path, opts)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "== %s (%s) -> %s\n%s\n\n", path, res.Language, res.Markdown, res.Summary)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pages failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exhaustive, "exhaustive", false, "fall back to chunked map-reduce for long pages")
	cmd.Flags().BoolVar(&docx, "docx", false, "also write a .docx summary")
	cmd.Flags().BoolVar(&archive, "archive", false, "move pages to the archived folder afterwards")
	return cmd
}
