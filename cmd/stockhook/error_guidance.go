package main

import (
	"context"
	"errors"
	"net"

	"stockhook/internal/api"
)

// errCodeTokenNotConfigured mirrors the server's numeric code for a missing
// server-side token.
const errCodeTokenNotConfigured = 3005

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized", "forbidden":
			lines = append(lines, "hint: pass the server token with --token or STOCKHOOK_TOKEN.")
		case "payload_too_large":
			lines = append(lines, "hint: the server rejects bodies above store.max_body_bytes (STOCKHOOK_MAX_BODY).")
		}
		if apiErr.RecordMissing() {
			lines = append(lines, "hint: the record may have been evicted; run: stockhook list")
		}
		if apiErr.ErrorCode == errCodeTokenNotConfigured {
			lines = append(lines, "hint: set auth.token or auth.token_hash on the server before sending.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify STOCKHOOK_API_URL points to a stockhook server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase STOCKHOOK_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a stockhook server is running at STOCKHOOK_API_URL.",
			"hint: start one with: stockhook srv",
		)
	}
	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
