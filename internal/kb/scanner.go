package kb

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"grant-assistant/internal/contextutil"
)

// ScannedFile represents a supported document found during a knowledge-base scan.
type ScannedFile struct {
	RelPath string // Relative path from the root (e.g., "quantitative/impact_stats.md")
	Folder  string // Folder path (path components except filename, e.g., "quantitative")
	AbsPath string // Absolute file path
}

// Scan walks root and returns every file with a supported extension, in
// lexical path order. Hidden directories are skipped.
func Scan(ctx context.Context, root string) ([]ScannedFile, error) {
	var scanned []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to access path %s: %w", path, err)
			}
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsSupported(path) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		folder := filepath.ToSlash(filepath.Dir(relPath))
		if folder == "." {
			folder = ""
		}

		scanned = append(scanned, ScannedFile{
			RelPath: relPath,
			Folder:  folder,
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan knowledge base %s: %w", root, err)
	}

	return scanned, nil
}
