package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidID       = 1004
	ErrCodeEmptyBody       = 1020
	ErrCodeLengthMismatch  = 1021
	ErrCodeRequestAborted  = 1022

	// Domain state (2xxx)
	ErrCodeRecordNotFound = 2001

	// Auth & limits (3xxx)
	ErrCodeUnauthorized       = 3001
	ErrCodeForbidden          = 3002
	ErrCodePayloadTooLarge    = 3004
	ErrCodeTokenNotConfigured = 3005

	// Internal/system (4xxx)
	ErrCodeInternal      = 4001
	ErrCodeStoreFailure  = 4002
	ErrCodeRecordCorrupt = 4006
	ErrCodeRenderFailed  = 4007
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeRecordNotFound
	case 413:
		return ErrCodePayloadTooLarge
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
