package hookstore

import (
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

const (
	idTimeLayout  = "20060102T150405Z"
	idRandomBytes = 6

	recordSuffix = ".json"
	blobSuffix   = ".body"
)

var idPattern = regexp.MustCompile(`^[0-9]{8}T[0-9]{6}Z-[0-9a-f]{12}$`)

// NewID returns a sortable record id: the UTC second of now in compact form,
// a dash, and six random bytes from rnd as lowercase hex.
func NewID(now time.Time, rnd io.Reader) (string, error) {
	suffix := make([]byte, idRandomBytes)
	if _, err := io.ReadFull(rnd, suffix); err != nil {
		return "", fmt.Errorf("read id suffix: %w", err)
	}
	return now.UTC().Format(idTimeLayout) + "-" + hex.EncodeToString(suffix), nil
}

// WellFormedID reports whether id has the shape produced by NewID.
func WellFormedID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidateID normalizes an untrusted id. A trailing ".json" is accepted so
// links built from document names keep working. Ids carrying separators or
// traversal sequences fail with ErrInvalidID.
func ValidateID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	id = strings.TrimSuffix(id, recordSuffix)
	if !safeName(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// IDTime returns the arrival second encoded in a well-formed id.
func IDTime(id string) (time.Time, bool) {
	if !WellFormedID(id) {
		return time.Time{}, false
	}
	t, err := time.Parse(idTimeLayout, id[:len(idTimeLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func safeName(name string) bool {
	if name == "" || name == "." {
		return false
	}
	return !strings.Contains(name, "..") && !strings.ContainsAny(name, "/\\\x00")
}

func recordName(id string) string {
	return id + recordSuffix
}

func blobName(id string) string {
	return id + blobSuffix
}

func idFromRecordName(name string) string {
	return strings.TrimSuffix(name, recordSuffix)
}
