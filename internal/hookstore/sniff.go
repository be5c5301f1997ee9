package hookstore

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"
	"unicode/utf8"
)

// DefaultContentType is recorded when a request carries no usable type.
const DefaultContentType = "application/octet-stream"

// NormalizeContentType strips parameters and lowercases a Content-Type value.
func NormalizeContentType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultContentType
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		mediaType, _, _ = strings.Cut(raw, ";")
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		return DefaultContentType
	}
	return mediaType
}

// IsJSONContentType reports whether a normalized media type carries JSON.
func IsJSONContentType(mediaType string) bool {
	switch mediaType {
	case "application/json", "text/json":
		return true
	}
	return strings.HasSuffix(mediaType, "+json")
}

// DecodePreview derives the stored rendition of a preview: JSON for JSON
// media types that parse, then strict UTF-8 text, then raw bytes. Only the
// preview is ever examined, exactly as captured; a multi-byte sequence cut by
// the preview boundary makes the preview binary.
func DecodePreview(mediaType string, preview []byte) Decoded {
	if len(preview) == 0 {
		return nil
	}
	if IsJSONContentType(mediaType) && utf8.Valid(preview) && json.Valid(preview) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, preview); err == nil {
			return DecodedJSON{Value: json.RawMessage(compact.Bytes())}
		}
	}
	if utf8.Valid(preview) {
		return DecodedText{Text: string(preview)}
	}

	data := make([]byte, len(preview))
	copy(data, preview)
	return DecodedBase64{Data: data}
}
