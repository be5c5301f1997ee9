package hookstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"io"
)

// IntegritySum is the result of one pass over a body stream.
type IntegritySum struct {
	Size    int64
	SHA256  string
	Preview []byte
}

// IntegrityReader hashes and bounds a body stream while it is being copied
// elsewhere, keeping at most previewLimit bytes in memory.
//
// A negative expected length means the sender declared none.
type IntegrityReader struct {
	src          io.Reader
	expected     int64
	maxBytes     int64
	previewLimit int

	total   int64
	hash    hash.Hash
	preview []byte
	err     error
}

// NewIntegrityReader wraps src. maxBytes <= 0 disables the ceiling.
func NewIntegrityReader(src io.Reader, expected, maxBytes int64, previewLimit int) *IntegrityReader {
	if previewLimit < 0 {
		previewLimit = 0
	}
	capHint := previewLimit
	if expected >= 0 && expected < int64(capHint) {
		capHint = int(expected)
	}
	return &IntegrityReader{
		src:          src,
		expected:     expected,
		maxBytes:     maxBytes,
		previewLimit: previewLimit,
		hash:         sha256.New(),
		preview:      make([]byte, 0, capHint),
	}
}

// Read implements io.Reader. A chunk that breaks a bound is dropped and the
// error is returned for this and every later call.
func (r *IntegrityReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	n, err := r.src.Read(p)
	if n > 0 {
		next := r.total + int64(n)
		switch {
		case r.maxBytes > 0 && next > r.maxBytes:
			r.err = ErrPayloadTooLarge
			return 0, r.err
		case r.expected >= 0 && next > r.expected:
			r.err = ErrLengthMismatch
			return 0, r.err
		}
		r.total = next
		r.hash.Write(p[:n])
		if room := r.previewLimit - len(r.preview); room > 0 {
			if room > n {
				room = n
			}
			r.preview = append(r.preview, p[:room]...)
		}
	}

	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		if r.expected >= 0 && r.total != r.expected {
			r.err = ErrLengthMismatch
			return n, r.err
		}
		if r.total == 0 {
			r.err = ErrEmptyBody
			return n, r.err
		}
		r.err = io.EOF
		return n, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF) && r.expected >= 0:
		r.err = ErrLengthMismatch
		return n, r.err
	default:
		r.err = err
		return n, err
	}
}

// Sum returns the totals collected so far. It is final once Read has
// returned io.EOF.
func (r *IntegrityReader) Sum() IntegritySum {
	return IntegritySum{
		Size:    r.total,
		SHA256:  hex.EncodeToString(r.hash.Sum(nil)),
		Preview: r.preview,
	}
}
