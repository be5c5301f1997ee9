package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"stockhook/internal/api"
	"stockhook/internal/format"
	"stockhook/internal/hookstore"
	"stockhook/internal/render"
)

var (
	outputFormatter format.Formatter = format.JSONFormatter{Indent: true}
	tableFormatter  format.Formatter = format.TableFormatter{}
)

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeRecordList(records []api.RecordSummary) error {
	if len(records) == 0 {
		return writePlain("no records\n")
	}
	return tableFormatter.Write(os.Stdout, recordTable(records, time.Now()))
}

func recordTable(records []api.RecordSummary, now time.Time) format.Table {
	table := format.Table{Header: []string{"ID", "RECEIVED", "SIZE", "TYPE", "TITLE"}}
	for _, r := range records {
		size := render.Bytes(r.BodySize)
		if r.PreviewTruncated {
			size += "*"
		}
		table.Rows = append(table.Rows, []string{
			r.ID,
			humanize.RelTime(r.ReceivedAt, now, "ago", "from now"),
			size,
			mediaType(r.ContentType),
			r.Title,
		})
	}
	return table
}

func writeRecordDetail(record hookstore.Record) error {
	lines := []string{
		fmt.Sprintf("id: %s", record.ID),
		fmt.Sprintf("received_at: %s", formatTime(record.ReceivedAt)),
		fmt.Sprintf("content_type: %s", record.ContentType),
		fmt.Sprintf("body_size: %d (%s)", record.BodySize, render.Bytes(record.BodySize)),
		fmt.Sprintf("body_sha256: %s", record.BodySHA256),
		fmt.Sprintf("preview_truncated: %t", record.PreviewTruncated),
	}
	if kind := hookstore.DecodedKind(record.Decoded); kind != "" {
		lines = append(lines, fmt.Sprintf("decoded: %s", kind))
	}
	if title := render.Title(record.Decoded); title != "" {
		lines = append(lines, fmt.Sprintf("title: %s", title))
	}
	if record.RemoteAddr != "" {
		lines = append(lines, fmt.Sprintf("remote_addr: %s", record.RemoteAddr))
	}
	if record.Path != "" {
		lines = append(lines, fmt.Sprintf("path: %s", record.Path))
	}
	if record.UserAgent != "" {
		lines = append(lines, fmt.Sprintf("user_agent: %s", record.UserAgent))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func mediaType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(base)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
