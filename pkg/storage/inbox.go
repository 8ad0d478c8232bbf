// Package storage abstracts where ledger export files arrive for import.
// The local backend watches a directory: accounting software drops its
// exports there and the scheduler sweeps them in.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo describes one pending export file.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Inbox lists pending export files, opens them for import and archives
// them once imported.
type Inbox interface {
	List(ctx context.Context) ([]FileInfo, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Archive(ctx context.Context, name string) error
}

// importableExtensions are the file types the import service understands.
var importableExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".txt":  true,
}

// LocalInbox implements Inbox on a local directory.
type LocalInbox struct {
	root    string
	archive string
}

// NewLocalInbox creates both directories if missing.
func NewLocalInbox(root, archive string) (*LocalInbox, error) {
	for _, dir := range []string{root, archive} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create inbox directory %s: %w", dir, err)
		}
	}
	return &LocalInbox{root: root, archive: archive}, nil
}

// List returns importable files in the inbox, oldest first.
func (in *LocalInbox) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(in.root)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !importableExtensions[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	for i := 1; i < len(files); i++ {
		for j := i; j > 0 && files[j].ModTime.Before(files[j-1].ModTime); j-- {
			files[j], files[j-1] = files[j-1], files[j]
		}
	}

	return files, nil
}

// Open opens a pending file by name. Names are flattened to their base so
// a crafted name cannot escape the inbox.
func (in *LocalInbox) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(in.root, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("open inbox file: %w", err)
	}
	return f, nil
}

// Archive moves an imported file out of the inbox. A timestamp prefix
// keeps re-exports of the same filename from colliding.
func (in *LocalInbox) Archive(ctx context.Context, name string) error {
	base := filepath.Base(name)
	src := filepath.Join(in.root, base)
	dst := filepath.Join(in.archive, base)

	if _, err := os.Stat(dst); err == nil {
		dst = filepath.Join(in.archive, fmt.Sprintf("%d_%s", time.Now().Unix(), base))
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("archive inbox file: %w", err)
	}
	return nil
}
