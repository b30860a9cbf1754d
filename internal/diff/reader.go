package diff

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// ContentReader reads the current on-disk content of a repository-relative path.
type ContentReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// DirReader reads files relative to a working tree root.
type DirReader struct {
	Root string
}

// ReadFile implements ContentReader
func (r DirReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(path)))
	if err != nil {
		return nil, err
	}
	return data, ctx.Err()
}

// ChainReader tries each reader in order and returns the first successful read.
type ChainReader []ContentReader

// ReadFile implements ContentReader
func (c ChainReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	err := os.ErrNotExist
	for _, r := range c {
		var data []byte
		if data, err = r.ReadFile(ctx, path); err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, err
}

func readLines(ctx context.Context, reader ContentReader, path string) ([]string, error) {
	if reader == nil {
		return nil, nil
	}
	data, err := reader.ReadFile(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Missing or unreadable files only cost us context labels.
		return nil, nil
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}
