package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"stockhook/internal/hookstore"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "STOCKHOOK_HTTP_TIMEOUT"
	tokenHeader        = "X-Stockhook-Token"
)

// Client is a simple HTTP client for the stockhook API.
type Client struct {
	baseURL string
	http    *http.Client
	// stream serves raw downloads. Its timeout covers only the wait for
	// response headers, so a large body may take as long as it needs.
	stream    *http.Client
	authToken string
}

// NewClient creates a new API client. token may be empty for servers that
// leave reads open.
func NewClient(baseURL, token string) *Client {
	timeout := httpTimeoutFromEnv()
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		stream:    &http.Client{Transport: streamTransport(timeout)},
		authToken: strings.TrimSpace(token),
	}
}

func streamTransport(headerTimeout time.Duration) http.RoundTripper {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}
	transport := base.Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return transport
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var resp HealthResponse
	return c.do(ctx, http.MethodGet, "/health", nil, &resp)
}

// Send posts one webhook body. size is the body length, or -1 when unknown.
func (c *Client) Send(ctx context.Context, body io.Reader, size int64, contentType string) (IngestResponse, error) {
	var resp IngestResponse
	req, err := c.newRequest(ctx, http.MethodPost, "/webhook", nil, body)
	if err != nil {
		return resp, err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

// ListRecords returns up to limit records, newest first.
func (c *Client) ListRecords(ctx context.Context, limit int) (RecordListResponse, error) {
	var resp RecordListResponse
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	err := c.do(ctx, http.MethodGet, "/v1/records", query, &resp)
	return resp, err
}

// GetRecord returns the stored record document.
func (c *Client) GetRecord(ctx context.Context, id string) (hookstore.Record, error) {
	var resp hookstore.Record
	err := c.do(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// DeleteRecord removes a record and its body.
func (c *Client) DeleteRecord(ctx context.Context, id string) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/v1/records/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// DownloadRaw streams the raw body of a record to w. Only the wait for the
// response headers is bounded by the client timeout; cancel ctx to stop a
// transfer early.
func (c *Client) DownloadRaw(ctx context.Context, id string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id)+"/raw", nil, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	c.setAuthHeader(req)
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, method, path, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		apiErr.Method = resp.Request.Method
		apiErr.Path = resp.Request.URL.Path
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("unexpected response %s", resp.Status)
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set(tokenHeader, c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
