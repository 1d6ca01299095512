package kb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"grant-assistant/internal/contextutil"
)

// Loader reads every supported document under a knowledge-base root.
type Loader struct {
	root string
}

// NewLoader creates a Loader for root.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Root returns the knowledge-base root directory.
func (l *Loader) Root() string {
	return l.root
}

// LoadAll scans the root and extracts each document. A file that cannot be
// read or parsed is logged and skipped; only an unusable root is an error.
func (l *Loader) LoadAll(ctx context.Context) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("knowledge base %s is not a directory", l.root)
	}

	files, err := Scan(ctx, l.root)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(files))
	skipped := 0
	for _, f := range files {
		extractor, err := ForFile(f.AbsPath)
		if err != nil {
			skipped++
			logger.WarnContext(ctx, "skipping document", "path", f.RelPath, "error", err)
			continue
		}

		content, title, err := extractor.Extract(f.AbsPath)
		if err != nil {
			skipped++
			logger.WarnContext(ctx, "failed to load document", "path", f.RelPath, "error", err)
			continue
		}

		docs = append(docs, Document{
			Path:     f.RelPath,
			Filename: filepath.Base(f.RelPath),
			Title:    title,
			Content:  content,
			Priority: Priority(f.RelPath),
		})
	}

	logger.InfoContext(ctx, "knowledge base loaded",
		"root", l.root,
		"documents", len(docs),
		"skipped", skipped,
	)

	return docs, nil
}
