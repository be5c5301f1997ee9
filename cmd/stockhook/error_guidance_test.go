package main

import (
	"context"
	"fmt"
	"net"
	"slices"
	"testing"

	"stockhook/internal/api"
)

func TestFormatCLIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")},
			want: "hint: start one with: stockhook srv",
		},
		{
			name: "not a stockhook server",
			err:  &api.APIError{Status: 404, Message: "api error: 404 Not Found"},
			want: "hint: verify STOCKHOOK_API_URL points to a stockhook server.",
		},
		{
			name: "bad token",
			err:  &api.APIError{Status: 401, Code: "unauthorized", ErrorCode: 3001, Message: "unauthorized"},
			want: "hint: pass the server token with --token or STOCKHOOK_TOKEN.",
		},
		{
			name: "server has no token",
			err:  &api.APIError{Status: 500, Code: "internal", ErrorCode: 3005, Message: "server token not configured"},
			want: "hint: set auth.token or auth.token_hash on the server before sending.",
		},
		{
			name: "evicted record",
			err:  &api.APIError{Status: 404, Code: "not_found", ErrorCode: 2001, Message: "record not found", Method: "GET", Path: "/v1/records/20260101T000000Z-aaaaaaaaaaaa"},
			want: "hint: the record may have been evicted; run: stockhook list",
		},
		{
			name: "too large",
			err:  &api.APIError{Status: 413, Code: "payload_too_large", ErrorCode: 3004, Message: "payload too large"},
			want: "hint: the server rejects bodies above store.max_body_bytes (STOCKHOOK_MAX_BODY).",
		},
		{
			name: "internal",
			err:  &api.APIError{Status: 500, Code: "internal", ErrorCode: 4002, Message: "internal error"},
			want: "hint: server returned an internal error; check server logs for details.",
		},
		{
			name: "timeout",
			err:  fmt.Errorf("list: %w", context.DeadlineExceeded),
			want: "hint: request timed out; check server health or increase STOCKHOOK_HTTP_TIMEOUT.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := formatCLIError(tt.err)
			if len(lines) == 0 || lines[0] != tt.err.Error() {
				t.Fatalf("expected the error first, got %v", lines)
			}
			if !slices.Contains(lines, tt.want) {
				t.Fatalf("expected %q in %v", tt.want, lines)
			}
		})
	}
}

func TestFormatCLIErrorPlain(t *testing.T) {
	lines := formatCLIError(fmt.Errorf("--keep must be positive"))
	if len(lines) != 1 {
		t.Fatalf("expected no hints, got %v", lines)
	}
	if formatCLIError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
