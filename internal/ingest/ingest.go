package ingest

import (
	"context"
)

// DirStats summarizes a directory discovery.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Discoverer resolves CLI input into the ordered list of emails to process.
type Discoverer interface {
	// File checks a single path.
	File(ctx context.Context, path string) (string, error)
	// Directory finds every email under root.
	Directory(ctx context.Context, root string) ([]string, DirStats, error)
}
