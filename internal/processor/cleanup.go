package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// writeMarkdown writes the summary for name into the output folder
func (p *implProcessor) writeMarkdown(ctx context.Context, name, summary string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		name,
		time.Now().Format("2006-01-02 15:04"),
		summary,
	)

	mdPath := filepath.Join(p.cfg.Paths.Output, name+".md")
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return "", err
	}
	p.logger.Debug(ctx, "Wrote summary: %s", mdPath)
	return mdPath, nil
}

// moveToArchived moves a processed page out of the input folder so it is not
// picked up again
func (p *implProcessor) moveToArchived(ctx context.Context, pagePath string) error {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return fmt.Errorf("create archived dir: %w", err)
	}
	destPath := filepath.Join(p.cfg.Paths.Archived, filepath.Base(pagePath))

	p.logger.Info(ctx, "Moving to archived folder: %s -> %s", pagePath, destPath)

	if err := os.Rename(pagePath, destPath); err != nil {
		// Rename fails across devices, copy instead
		if err := copyFile(pagePath, destPath); err != nil {
			return fmt.Errorf("move to archived: %w", err)
		}
		if err := os.Remove(pagePath); err != nil {
			p.logger.Warn(ctx, "Failed to remove %s after copy: %v", pagePath, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	return nil
}
