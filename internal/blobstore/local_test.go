package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type failingReader struct {
	data []byte
	err  error
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.done {
		return 0, f.err
	}
	f.done = true
	return copy(p, f.data), nil
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestLocalPutOpenDelete(t *testing.T) {
	ls, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	n, err := ls.Put(ctx, "a.body", bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 bytes written, got %d", n)
	}

	rc, err := ls.Open(ctx, "a.body")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", string(data))
	}

	info, err := ls.Stat(ctx, "a.body")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 5 {
		t.Fatalf("expected size 5, got %d", info.Size())
	}

	if err := ls.Delete(ctx, "a.body"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ls.Delete(ctx, "a.body"); err != nil {
		t.Fatalf("delete missing should be noop: %v", err)
	}
	if names := listDir(t, ls.Root()); len(names) != 0 {
		t.Fatalf("expected empty dir, got %v", names)
	}
}

func TestLocalPutSourceErrorLeavesNothing(t *testing.T) {
	ls, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	src := &failingReader{data: []byte("partial"), err: io.ErrUnexpectedEOF}
	if _, err := ls.Put(context.Background(), "b.body", src); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected source error, got %v", err)
	}
	if names := listDir(t, ls.Root()); len(names) != 0 {
		t.Fatalf("expected no files after failed put, got %v", names)
	}
}

func TestLocalPutRejectsExistingTemp(t *testing.T) {
	ls, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	tmpPath := filepath.Join(ls.Root(), "c.body"+TempSuffix)
	if err := os.WriteFile(tmpPath, []byte("other writer"), 0o644); err != nil {
		t.Fatalf("seed temp: %v", err)
	}

	_, err = ls.Put(context.Background(), "c.body", strings.NewReader("mine"))
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		t.Fatalf("colliding temp should be untouched: %v", err)
	}
	if string(data) != "other writer" {
		t.Fatalf("colliding temp was modified: %q", string(data))
	}
	if _, err := os.Stat(filepath.Join(ls.Root(), "c.body")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no final file, got %v", err)
	}
}

func TestLocalPutConcurrentSameNameCollides(t *testing.T) {
	ls, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	// The first writer holds the temp file while the second arrives.
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		_, err := ls.Put(ctx, "d.json", &blockingReader{data: []byte("first"), release: release})
		firstDone <- err
	}()
	waitForFile(t, filepath.Join(ls.Root(), "d.json"+TempSuffix))

	if err := ls.WriteFile(ctx, "d.json", []byte("second")); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist for the colliding writer, got %v", err)
	}
	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first writer: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(ls.Root(), "d.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "first" {
		t.Fatalf("expected the first writer's bytes, got %q", data)
	}
	if names := listDir(t, ls.Root()); len(names) != 1 {
		t.Fatalf("expected only d.json, got %v", names)
	}
}

func TestPublishReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "d.json")
	tmp := dst + TempSuffix
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("write dst: %v", err)
	}
	if err := os.WriteFile(tmp, []byte("new"), 0o644); err != nil {
		t.Fatalf("write tmp: %v", err)
	}
	if err := publish(tmp, dst); err != nil {
		t.Fatalf("publish: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "new" {
		t.Fatalf("expected new contents, got %q (%v)", data, err)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Fatalf("expected temp gone, got %v", err)
	}
}

type blockingReader struct {
	data    []byte
	release chan struct{}
	sent    bool
}

func (b *blockingReader) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, b.data), nil
	}
	<-b.release
	return 0, io.EOF
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", path)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLocalPutCanceledContext(t *testing.T) {
	ls, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ls.Put(ctx, "e.body", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if names := listDir(t, ls.Root()); len(names) != 0 {
		t.Fatalf("expected no files, got %v", names)
	}
}

func TestLocalListSkipsTemp(t *testing.T) {
	ls, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	for _, name := range []string{"b.json", "a.json", "a.body", "c.json.tmp"} {
		if err := os.WriteFile(filepath.Join(ls.Root(), name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	names, err := ls.List(context.Background(), ".json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Join(names, ",") != "a.json,b.json" {
		t.Fatalf("unexpected list: %v", names)
	}

	temps, err := ls.List(context.Background(), TempSuffix)
	if err != nil {
		t.Fatalf("list temps: %v", err)
	}
	if len(temps) != 1 || temps[0] != "c.json.tmp" {
		t.Fatalf("unexpected temp list: %v", temps)
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "20261019T081502Z-3fa94c0be217.body", want: true},
		{name: "", want: false},
		{name: "..", want: false},
		{name: "../etc/passwd", want: false},
		{name: "a/b", want: false},
		{name: `a\b`, want: false},
		{name: "a\x00b", want: false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Fatalf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	ls, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if _, err := ls.Open(context.Background(), "../x"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}
