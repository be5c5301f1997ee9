package hookstore

import "errors"

var (
	// ErrInvalidID rejects untrusted ids naming traversal or separator characters.
	ErrInvalidID = errors.New("invalid id")
	// ErrEmptyBody is returned when an ingest carries zero bytes.
	ErrEmptyBody = errors.New("empty body")
	// ErrLengthMismatch is returned when the declared length disagrees with the bytes received.
	ErrLengthMismatch = errors.New("body length does not match declared length")
	// ErrPayloadTooLarge is returned once a body exceeds the configured ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrNotFound is returned for absent or unreadable records and blobs.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned for records present on disk but not valid JSON.
	ErrCorrupt = errors.New("record is corrupt")
	// ErrIOFailure marks disk or transport failures during a write.
	ErrIOFailure = errors.New("io failure")
)

// IOError wraps a disk or transport failure. It matches ErrIOFailure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + ErrIOFailure.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIOFailure, e.Err}
}

func ioFailure(op string, err error) error {
	return &IOError{Op: op, Err: err}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrEmptyBody) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrPayloadTooLarge)
}
