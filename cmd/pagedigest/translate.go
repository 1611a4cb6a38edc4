package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func translateCMD(cfgPath *string) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Translate text between two languages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath, nil)
			if err != nil {
				return err
			}
			defer a.close()

			if to == "" {
				to = a.cfg.Translation.TargetLanguage
			}
			if to == "" {
				return fmt.Errorf("--to is required when translation.target_language is not set")
			}

			fmt.Fprintln(cmd.OutOrStdout(), a.cache.Translate(ctx, strings.Join(args, " "), from, to))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "en", "source language")
	cmd.Flags().StringVar(&to, "to", "", "target language (default translation.target_language)")
	return cmd
}
