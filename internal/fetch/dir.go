package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirFetcher reads pages previously saved to a directory. The file for a
// source is <dir>/<source id with "/" replaced by "_">.html.
type DirFetcher struct {
	dir string
}

// NewDirFetcher creates a DirFetcher reading from dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// FileName returns the file name used for sourceID.
func FileName(sourceID string) string {
	return strings.ReplaceAll(sourceID, "/", "_") + ".html"
}

// Fetch reads the saved page of req.SourceID.
func (d *DirFetcher) Fetch(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(d.dir, FileName(req.SourceID))
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPageNotFound, path)
		}
		return "", fmt.Errorf("failed to read saved page: %w", err)
	}
	return decodeBody(raw, "")
}
