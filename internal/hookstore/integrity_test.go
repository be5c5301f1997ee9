package hookstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func drain(r io.Reader) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

func TestIntegrityReaderSums(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		preview int
	}{
		{name: "smaller than preview", size: 10, preview: 64},
		{name: "equal to preview", size: 64, preview: 64},
		{name: "larger than preview", size: 1000, preview: 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Repeat([]byte("abcdefghij"), tt.size/10+1)[:tt.size]
			r := NewIntegrityReader(iotest.HalfReader(bytes.NewReader(data)), int64(tt.size), 4096, tt.preview)
			if err := drain(r); err != nil {
				t.Fatalf("drain: %v", err)
			}
			sum := r.Sum()
			want := sha256.Sum256(data)
			if sum.SHA256 != hex.EncodeToString(want[:]) {
				t.Fatalf("hash mismatch: %s", sum.SHA256)
			}
			if sum.Size != int64(tt.size) {
				t.Fatalf("expected size %d, got %d", tt.size, sum.Size)
			}
			if len(sum.Preview) != min(tt.size, tt.preview) {
				t.Fatalf("expected preview %d bytes, got %d", min(tt.size, tt.preview), len(sum.Preview))
			}
			if !bytes.Equal(sum.Preview, data[:len(sum.Preview)]) {
				t.Fatal("preview is not a prefix of the body")
			}
		})
	}
}

func TestIntegrityReaderPreviewStaysBounded(t *testing.T) {
	body := io.LimitReader(zeroReader{}, 8<<20)
	r := NewIntegrityReader(body, -1, 16<<20, 32)
	if err := drain(r); err != nil {
		t.Fatalf("drain: %v", err)
	}
	sum := r.Sum()
	if sum.Size != 8<<20 {
		t.Fatalf("expected 8 MiB, got %d", sum.Size)
	}
	if len(sum.Preview) != 32 || cap(sum.Preview) > 64 {
		t.Fatalf("preview grew past its limit: len=%d cap=%d", len(sum.Preview), cap(sum.Preview))
	}
}

func TestIntegrityReaderRejections(t *testing.T) {
	tests := []struct {
		name     string
		src      io.Reader
		expected int64
		maxBytes int64
		wantErr  error
	}{
		{
			name:     "exceeds ceiling without declared length",
			src:      strings.NewReader(strings.Repeat("x", 11)),
			expected: -1,
			maxBytes: 10,
			wantErr:  ErrPayloadTooLarge,
		},
		{
			name:     "exceeds declared length",
			src:      strings.NewReader("123456"),
			expected: 5,
			maxBytes: 100,
			wantErr:  ErrLengthMismatch,
		},
		{
			name:     "short of declared length",
			src:      strings.NewReader(strings.Repeat("x", 50)),
			expected: 100,
			maxBytes: 1000,
			wantErr:  ErrLengthMismatch,
		},
		{
			name:     "sender disconnects",
			src:      io.MultiReader(strings.NewReader(strings.Repeat("x", 50)), iotest.ErrReader(io.ErrUnexpectedEOF)),
			expected: 100,
			maxBytes: 1000,
			wantErr:  ErrLengthMismatch,
		},
		{
			name:     "empty body",
			src:      strings.NewReader(""),
			expected: -1,
			maxBytes: 1000,
			wantErr:  ErrEmptyBody,
		},
		{
			name:     "transport error passes through",
			src:      iotest.ErrReader(errors.New("connection reset")),
			expected: -1,
			maxBytes: 1000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewIntegrityReader(tt.src, tt.expected, tt.maxBytes, 8)
			err := drain(r)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if _, again := r.Read(make([]byte, 4)); again == nil || again.Error() != err.Error() {
				t.Fatalf("expected sticky error, got %v", again)
			}
		})
	}
}

func TestIntegrityReaderExactCeiling(t *testing.T) {
	r := NewIntegrityReader(strings.NewReader(strings.Repeat("y", 10)), -1, 10, 4)
	if err := drain(r); err != nil {
		t.Fatalf("body at the ceiling should pass: %v", err)
	}
	if r.Sum().Size != 10 {
		t.Fatalf("expected 10 bytes, got %d", r.Sum().Size)
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
