package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"stockhook/internal/api"
	"stockhook/internal/hookstore"
)

func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	code := errorCode(status, err)
	numericCode := errorNumericCode(status, err)
	message := s.logRequestError(r, status, code, numericCode, err)

	s.writeJSON(w, status, api.ErrorResponse{Error: message, Code: code, ErrorCode: numericCode})
}

// writePageError answers browser routes with a short plain-text error.
func (s *Server) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromError(err)
	code := errorCode(status, err)
	message := s.logRequestError(r, status, code, errorNumericCode(status, err), err)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintln(w, message)
}

// logRequestError logs a rejected request and returns the message safe to
// show the client.
func (s *Server) logRequestError(r *http.Request, status int, code string, numericCode int, err error) string {
	message := err.Error()

	fields := []any{"status", status, "code", code, "error_code", numericCode, "error", err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		if id := requestIDFromContext(r.Context()); id != "" {
			fields = append(fields, "request_id", id)
		}
	}

	switch {
	case status >= 500:
		s.log().Error("request error", fields...)
		if !isPublicError(err) {
			message = "internal error"
		}
	case status >= 400 && shouldWarnClientError(status):
		s.log().Warn("request rejected", fields...)
	case status >= 400:
		s.log().Debug("request rejected", fields...)
	}
	return message
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("write json response", "status", status, "error", err)
	}
}

type apiError struct {
	status  int
	code    string
	errCode int
	err     error
	// public errors keep their message even when status is 5xx.
	public bool
}

func (e apiError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func makeAPIError(status int, code string, errCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	var existing apiError
	if errors.As(err, &existing) {
		if existing.status != 0 {
			return existing
		}
	}

	return apiError{status: status, code: code, errCode: errCode, err: err}
}

func badRequestCode(err error, code int) error {
	return makeAPIError(http.StatusBadRequest, "invalid_argument", code, err)
}

func notFoundCode(err error, code int) error {
	return makeAPIError(http.StatusNotFound, "not_found", code, err)
}

func unauthorized() error {
	return makeAPIError(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, errors.New("unauthorized"))
}

func tokenNotConfigured() error {
	return apiError{
		status:  http.StatusInternalServerError,
		code:    "internal",
		errCode: ErrCodeTokenNotConfigured,
		err:     errors.New("server token not configured"),
		public:  true,
	}
}

func storeFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeStoreFailure, err)
}

// storeError maps hookstore errors onto HTTP statuses.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, hookstore.ErrInvalidID):
		return badRequestCode(err, ErrCodeInvalidID)
	case errors.Is(err, hookstore.ErrEmptyBody):
		return badRequestCode(err, ErrCodeEmptyBody)
	case errors.Is(err, hookstore.ErrLengthMismatch):
		return badRequestCode(err, ErrCodeLengthMismatch)
	case errors.Is(err, hookstore.ErrPayloadTooLarge):
		return makeAPIError(http.StatusRequestEntityTooLarge, "payload_too_large", ErrCodePayloadTooLarge, err)
	case errors.Is(err, hookstore.ErrNotFound):
		return notFoundCode(err, ErrCodeRecordNotFound)
	case errors.Is(err, hookstore.ErrCorrupt):
		return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeRecordCorrupt, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return badRequestCode(fmt.Errorf("request aborted: %w", err), ErrCodeRequestAborted)
	default:
		return storeFailure(err)
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := storeError(err)
	s.writeErrorReq(w, r, httpStatusFromError(mapped), mapped)
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func errorCode(status int, err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.code != "" {
		return apiErr.code
	}
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusInternalServerError:
		return "internal"
	default:
		return ""
	}
}

func errorNumericCode(status int, err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.errCode > 0 {
		return apiErr.errCode
	}
	return defaultErrorCodeByStatus(status)
}

func isPublicError(err error) bool {
	var apiErr apiError
	return errors.As(err, &apiErr) && apiErr.public
}

func shouldWarnClientError(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestEntityTooLarge, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

func queryIntDefault(r *http.Request, key string, def int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, badRequestCode(fmt.Errorf("invalid %s", key), ErrCodeInvalidQuery)
	}
	if parsed < 0 {
		return 0, badRequestCode(fmt.Errorf("%s must be >= 0", key), ErrCodeInvalidQuery)
	}
	return parsed, nil
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		if strings.EqualFold(strings.TrimSpace(mediaType), "application/json") {
			return true
		}
	}
	return false
}
