package hookstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decoded is the preview rendition stored with a record. Exactly one of
// DecodedJSON, DecodedText or DecodedBase64 is stored, or none at all.
type Decoded interface {
	decodedKind() string
}

// DecodedJSON holds a preview that parsed as JSON.
type DecodedJSON struct {
	Value json.RawMessage
}

// DecodedText holds a preview that was valid UTF-8.
type DecodedText struct {
	Text string
}

// DecodedBase64 holds raw preview bytes; they are stored base64-encoded.
type DecodedBase64 struct {
	Data []byte
}

func (DecodedJSON) decodedKind() string   { return "json" }
func (DecodedText) decodedKind() string   { return "text" }
func (DecodedBase64) decodedKind() string { return "b64" }

// DecodedKind names the variant held by d, or "" for none.
func DecodedKind(d Decoded) string {
	if d == nil {
		return ""
	}
	return d.decodedKind()
}

// Record is one ingested webhook event.
type Record struct {
	ID               string
	ReceivedAt       time.Time
	ContentType      string
	BodyRef          string
	BodySize         int64
	BodySHA256       string
	PreviewTruncated bool
	Decoded          Decoded

	RemoteAddr string
	Path       string
	UserAgent  string

	// Preview is only populated on records returned by Put.
	Preview []byte
}

// RecordSummary is the list view of a record.
type RecordSummary struct {
	ID               string
	ReceivedAt       time.Time
	ContentType      string
	BodySize         int64
	DocSize          int64
	PreviewTruncated bool
	Decoded          Decoded
}

type recordDocument struct {
	ID               string          `json:"id,omitempty"`
	ReceivedAt       string          `json:"received_at"`
	ContentType      string          `json:"content_type"`
	BodyRef          string          `json:"body_ref"`
	BodySize         int64           `json:"body_size"`
	BodySHA256       string          `json:"body_sha256"`
	PreviewTruncated bool            `json:"preview_truncated"`
	DecodedJSON      json.RawMessage `json:"decoded_json,omitempty"`
	DecodedText      *string         `json:"decoded_text,omitempty"`
	DecodedB64       []byte          `json:"decoded_b64,omitempty"`
	RemoteAddr       string          `json:"remote_addr,omitempty"`
	Path             string          `json:"path,omitempty"`
	UserAgent        string          `json:"user_agent,omitempty"`
}

// MarshalJSON encodes the record in its on-disk document form.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := recordDocument{
		ID:               r.ID,
		ReceivedAt:       r.ReceivedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		ContentType:      r.ContentType,
		BodyRef:          r.BodyRef,
		BodySize:         r.BodySize,
		BodySHA256:       r.BodySHA256,
		PreviewTruncated: r.PreviewTruncated,
		RemoteAddr:       r.RemoteAddr,
		Path:             r.Path,
		UserAgent:        r.UserAgent,
	}
	switch d := r.Decoded.(type) {
	case nil:
	case DecodedJSON:
		doc.DecodedJSON = d.Value
	case DecodedText:
		text := d.Text
		doc.DecodedText = &text
	case DecodedBase64:
		doc.DecodedB64 = d.Data
	default:
		return nil, fmt.Errorf("unsupported decoded variant %T", r.Decoded)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes an on-disk record document.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc recordDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var receivedAt time.Time
	if doc.ReceivedAt != "" {
		parsed, err := time.Parse(time.RFC3339, doc.ReceivedAt)
		if err != nil {
			return fmt.Errorf("received_at: %w", err)
		}
		receivedAt = parsed.UTC()
	}

	*r = Record{
		ID:               doc.ID,
		ReceivedAt:       receivedAt,
		ContentType:      doc.ContentType,
		BodyRef:          doc.BodyRef,
		BodySize:         doc.BodySize,
		BodySHA256:       doc.BodySHA256,
		PreviewTruncated: doc.PreviewTruncated,
		RemoteAddr:       doc.RemoteAddr,
		Path:             doc.Path,
		UserAgent:        doc.UserAgent,
	}
	switch {
	case len(doc.DecodedJSON) > 0:
		r.Decoded = DecodedJSON{Value: doc.DecodedJSON}
	case doc.DecodedText != nil:
		r.Decoded = DecodedText{Text: *doc.DecodedText}
	case doc.DecodedB64 != nil:
		r.Decoded = DecodedBase64{Data: doc.DecodedB64}
	}
	return nil
}

// Summary returns the list view of r. docSize is the document size in bytes.
func (r Record) Summary(docSize int64) RecordSummary {
	return RecordSummary{
		ID:               r.ID,
		ReceivedAt:       r.ReceivedAt,
		ContentType:      r.ContentType,
		BodySize:         r.BodySize,
		DocSize:          docSize,
		PreviewTruncated: r.PreviewTruncated,
		Decoded:          r.Decoded,
	}
}
