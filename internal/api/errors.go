package api

import "fmt"

// APIError is an error answer from a stockhook server.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
	// Method and Path name the request that failed, e.g. "DELETE /v1/records/<id>".
	Method string
	Path   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.detail()
	if e.Method != "" && e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, msg)
	}
	return msg
}

func (e *APIError) detail() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return e.Message
	case e.Status > 0:
		return fmt.Sprintf("stockhook server answered %d", e.Status)
	}
	return "stockhook server error"
}

// RecordMissing reports whether the server had no record for the request;
// retention may have evicted it.
func (e *APIError) RecordMissing() bool {
	return e != nil && e.Status == 404 && e.Code == "not_found"
}
