package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
)

// FSDiscoverer finds .eml files on the local filesystem.
type FSDiscoverer struct {
	SkipHidden bool
	logger     *slog.Logger
}

func NewFSDiscoverer(skipHidden bool, logger *slog.Logger) *FSDiscoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSDiscoverer{SkipHidden: skipHidden, logger: logger}
}

var _ Discoverer = (*FSDiscoverer)(nil)

// File returns path unchanged when it names an existing regular file. Any
// extension is accepted for an explicitly named file.
func (d *FSDiscoverer) File(_ context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", common.NewAppError(common.CodeInput, "email file is required", common.ErrInvalidInput)
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", common.NewAppError(common.CodeInput, "email file not found: "+path, common.ErrNotFound)
	}
	if err != nil {
		return "", common.NewAppError(common.CodeInput, "stat "+path, err)
	}
	if info.IsDir() {
		return "", common.NewAppError(common.CodeInput, path+" is a directory", common.ErrInvalidInput)
	}
	return path, nil
}

// Directory walks root recursively and returns every .eml file in lexical
// path order. Unreadable entries are counted and skipped. Finding nothing is
// an error.
func (d *FSDiscoverer) Directory(ctx context.Context, root string) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, common.NewAppError(common.CodeInput, "email directory is required", common.ErrInvalidInput)
	}
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, stats, common.NewAppError(common.CodeInput, "email directory not found: "+root, common.ErrNotFound)
	}
	if err != nil {
		return nil, stats, common.NewAppError(common.CodeInput, "stat "+root, err)
	}
	if !info.IsDir() {
		return nil, stats, common.NewAppError(common.CodeInput, root+" is not a directory", common.ErrInvalidInput)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			d.logger.Warn("ingest.walk.error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if d.SkipHidden && path != root && IsHidden(path) {
			stats.Skipped++
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !IsEmail(path) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	d.logger.Info("ingest.discover.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	if len(paths) == 0 {
		return nil, stats, common.NewAppError(common.CodeInput, "no .eml files found in "+root, common.ErrNotFound)
	}
	return paths, stats, nil
}
