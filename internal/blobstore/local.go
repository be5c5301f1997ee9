package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TempSuffix marks objects that are still being written.
const TempSuffix = ".tmp"

// ErrInvalidName is returned for object names that could escape the root.
var ErrInvalidName = errors.New("invalid object name")

// Local stores named objects as flat files in one directory. Every write
// goes to a create-exclusive sibling temp file and is published by rename.
type Local struct {
	root string
}

// NewLocal creates a local store rooted at root.
func NewLocal(root string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute directory backing the store.
func (l *Local) Root() string {
	if l == nil {
		return ""
	}
	return l.root
}

// Put streams r into name. The temp path is opened with O_EXCL, so a
// colliding writer fails immediately instead of sharing the file. On any
// error the temp file is removed and name is never created.
func (l *Local) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	if l == nil {
		return 0, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return 0, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dst, err := l.path(name)
	if err != nil {
		return 0, err
	}

	tmpPath := dst + TempSuffix
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", name, err)
	}

	published := false
	defer func() {
		if !published {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r})
	if err != nil {
		return n, err
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", name, err)
	}

	if err := publish(tmpPath, dst); err != nil {
		return n, fmt.Errorf("publish %s: %w", name, err)
	}
	published = true
	return n, nil
}

// publish makes the finished temp file visible as dst with one atomic
// rename. Rename replaces an existing dst; colliding writers are stopped
// earlier by the create-exclusive temp file, which derives from the same name.
func publish(tmpPath, dst string) error {
	return os.Rename(tmpPath, dst)
}

// WriteFile publishes data under name with the same discipline as Put.
func (l *Local) WriteFile(ctx context.Context, name string, data []byte) error {
	_, err := l.Put(ctx, name, bytes.NewReader(data))
	return err
}

// Open returns a sequential reader for name.
func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if l == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Stat describes the published object name.
func (l *Local) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	if l == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// Delete removes an object. Missing files are ignored.
func (l *Local) Delete(ctx context.Context, name string) error {
	if l == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the sorted names of regular files ending in suffix.
// In-flight temp files are only returned when suffix is TempSuffix.
func (l *Local) List(ctx context.Context, suffix string) ([]string, error) {
	if l == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		if suffix != TempSuffix && strings.HasSuffix(name, TempSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidName reports whether name is a flat object name inside the root.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return true
}

func (l *Local) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.root, name), nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
