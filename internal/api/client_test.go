package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestClientSendAndList(t *testing.T) {
	var gotToken, gotType string
	var gotLength int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/webhook":
			gotToken = r.Header.Get(tokenHeader)
			gotType = r.Header.Get("Content-Type")
			gotLength = r.ContentLength
			_, _ = io.Copy(io.Discard, r.Body)
			_ = json.NewEncoder(w).Encode(IngestResponse{ID: "20260101T000000Z-aaaaaaaaaaaa", File: "20260101T000000Z-aaaaaaaaaaaa.json", BodySize: 5})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/records":
			if r.URL.Query().Get("limit") != "2" {
				t.Errorf("expected limit=2, got %q", r.URL.RawQuery)
			}
			_ = json.NewEncoder(w).Encode(RecordListResponse{Records: []RecordSummary{{ID: "a"}, {ID: "b"}}, Count: 2})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "tok-123")
	resp, err := client.Send(context.Background(), strings.NewReader("hello"), 5, "text/plain")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.ID != "20260101T000000Z-aaaaaaaaaaaa" || resp.BodySize != 5 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if gotToken != "tok-123" || gotType != "text/plain" || gotLength != 5 {
		t.Fatalf("unexpected request: token=%q type=%q length=%d", gotToken, gotType, gotLength)
	}

	list, err := client.ListRecords(context.Background(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Count != 2 || len(list.Records) != 2 {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "record not found", Code: "not_found", ErrorCode: 2001})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").GetRecord(context.Background(), "20260101T000000Z-aaaaaaaaaaaa")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "not_found" || apiErr.ErrorCode != 2001 {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !apiErr.RecordMissing() {
		t.Fatal("expected a missing record")
	}
	want := "GET /v1/records/20260101T000000Z-aaaaaaaaaaaa: not_found: record not found"
	if apiErr.Error() != want {
		t.Fatalf("expected %q, got %q", want, apiErr.Error())
	}
}

func TestAPIErrorMessages(t *testing.T) {
	tests := []struct {
		err  *APIError
		want string
	}{
		{err: &APIError{Status: 502}, want: "stockhook server answered 502"},
		{err: &APIError{Message: "unexpected response 502 Bad Gateway", Method: "GET", Path: "/health"}, want: "GET /health: unexpected response 502 Bad Gateway"},
		{err: &APIError{Status: 413, Code: "payload_too_large", Message: "payload too large"}, want: "payload_too_large: payload too large"},
		{err: &APIError{}, want: "stockhook server error"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Fatalf("Error() = %q, want %q", got, tt.want)
		}
	}
	if (&APIError{Status: 404}).RecordMissing() {
		t.Fatal("a bare 404 is not a stockhook record miss")
	}
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Ping(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Code != "" {
		t.Fatalf("expected bare APIError, got %v", err)
	}
}

func TestClientDownloadRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/records/id-1/raw" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("raw-bytes"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := NewClient(srv.URL, "").DownloadRaw(context.Background(), "id-1", &buf)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if n != 9 || buf.String() != "raw-bytes" {
		t.Fatalf("unexpected download %d %q", n, buf.String())
	}
}

func TestClientDownloadRawOutlivesTimeout(t *testing.T) {
	t.Setenv(httpTimeoutEnvKey, "100ms")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		for i := 0; i < 4; i++ {
			_, _ = w.Write([]byte("chunk"))
			flusher.Flush()
			time.Sleep(60 * time.Millisecond)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	var buf bytes.Buffer
	n, err := client.DownloadRaw(context.Background(), "slow", &buf)
	if err != nil {
		t.Fatalf("slow download should finish: %v", err)
	}
	if n != 20 || buf.String() != strings.Repeat("chunk", 4) {
		t.Fatalf("unexpected download %d %q", n, buf.String())
	}
}

func TestClientDownloadRawHeaderTimeout(t *testing.T) {
	t.Setenv(httpTimeoutEnvKey, "50ms")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := NewClient(srv.URL, "").DownloadRaw(context.Background(), "stuck", io.Discard)
	if err == nil {
		t.Fatal("expected a timeout waiting for headers")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("header timeout not applied, waited %v", elapsed)
	}
}
