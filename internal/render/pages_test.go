package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"stockhook/internal/hookstore"
)

func TestMarkdownOmitsRawHTML(t *testing.T) {
	out, err := Markdown("# Hi\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1>Hi</h1>") {
		t.Fatalf("expected heading, got %s", html)
	}
	if strings.Contains(html, "<script>") || strings.Contains(html, "javascript:") {
		t.Fatalf("unsafe content rendered: %s", html)
	}
}

func TestRenderIndexEscapesTitles(t *testing.T) {
	r := NewRenderer(time.UTC)
	var buf bytes.Buffer
	err := r.RenderIndex(&buf, []IndexRow{{ID: "20260101T000000Z-000000000000", Title: "<b>x</b>", Date: "2026-01-01", Size: "10 B"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<b>x</b>") {
		t.Fatal("title was not escaped")
	}
	if !strings.Contains(out, "/view?id=20260101T000000Z-000000000000") {
		t.Fatalf("missing view link: %s", out)
	}

	buf.Reset()
	if err := r.RenderIndex(&buf, nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No records yet") {
		t.Fatal("expected empty-state row")
	}
}

func TestIndexRowsUseLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	r := NewRenderer(loc)
	rows := r.IndexRows([]hookstore.RecordSummary{{
		ID:         "20260101T200000Z-000000000000",
		ReceivedAt: time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC),
		BodySize:   2048,
		Decoded:    hookstore.DecodedText{Text: "hello"},
	}})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Date != "2026-01-02" || rows[0].Size != "2.0 KiB" || rows[0].Title != "hello" {
		t.Fatalf("unexpected row %#v", rows[0])
	}
}

func TestRecordPage(t *testing.T) {
	r := NewRenderer(nil)
	record := hookstore.Record{
		ID:          "20260101T000000Z-000000000001",
		ReceivedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ContentType: "application/json",
		BodySize:    900000,
		BodySHA256:  strings.Repeat("ab", 32),
		Decoded:     hookstore.DecodedJSON{Value: json.RawMessage(`{"title":"Report","content":"**bold**"}`)},
	}

	page, err := r.Record(record, Payload(record.Decoded), false)
	if err != nil {
		t.Fatalf("record page: %v", err)
	}
	if page.Title != "Report" {
		t.Fatalf("expected title Report, got %q", page.Title)
	}
	if page.Note == "" {
		t.Fatal("expected preview note")
	}
	if !strings.Contains(string(page.Content), "<strong>bold</strong>") {
		t.Fatalf("unexpected content %s", page.Content)
	}

	var buf bytes.Buffer
	if err := r.RenderView(&buf, page); err != nil {
		t.Fatalf("render view: %v", err)
	}
	if !strings.Contains(buf.String(), "/raw?id="+record.ID) {
		t.Fatal("missing raw link")
	}
}

func TestRecordPageBinary(t *testing.T) {
	r := NewRenderer(nil)
	record := hookstore.Record{ID: "20260101T000000Z-000000000002", Decoded: hookstore.DecodedBase64{Data: []byte{0, 1}}}
	page, err := r.Record(record, Payload(record.Decoded), true)
	if err != nil {
		t.Fatalf("record page: %v", err)
	}
	if page.Content != "" || !strings.Contains(page.Note, "Binary") {
		t.Fatalf("unexpected binary page %#v", page)
	}
}

func TestBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{-5, "-5"},
	}
	for _, tt := range tests {
		if got := Bytes(tt.in); got != tt.want {
			t.Fatalf("Bytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
