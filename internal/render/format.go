package render

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes formats a byte count for display.
func Bytes(n int64) string {
	if n < 0 {
		return humanize.Comma(n)
	}
	return humanize.IBytes(uint64(n))
}

// Date formats t as a calendar day in loc.
func Date(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// DateTime formats t to the second in loc.
func DateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}

// ShortHash returns the first twelve characters of a hex digest.
func ShortHash(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
