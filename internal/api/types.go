package api

import "time"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// IngestResponse describes a stored record.
type IngestResponse struct {
	ID               string    `json:"id"`
	File             string    `json:"file"`
	ReceivedAt       time.Time `json:"received_at"`
	ContentType      string    `json:"content_type"`
	BodySize         int64     `json:"body_size"`
	BodySHA256       string    `json:"body_sha256"`
	PreviewTruncated bool      `json:"preview_truncated"`
}

// RecordSummary is one entry of a record listing.
type RecordSummary struct {
	ID               string    `json:"id"`
	ReceivedAt       time.Time `json:"received_at"`
	ContentType      string    `json:"content_type"`
	BodySize         int64     `json:"body_size"`
	DocSize          int64     `json:"doc_size"`
	PreviewTruncated bool      `json:"preview_truncated"`
	Decoded          string    `json:"decoded,omitempty"`
	Title            string    `json:"title"`
}

// RecordListResponse answers GET /v1/records.
type RecordListResponse struct {
	Records []RecordSummary `json:"records"`
	Count   int             `json:"count"`
}

// DeleteResponse answers DELETE /v1/records/{id}.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
