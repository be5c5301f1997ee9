package server

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressed gzips responses for clients that accept it. Raw body downloads
// are left alone so their bytes and length match the stored blob.
func (s *Server) compressed(h http.Handler) http.Handler {
	return gzhttp.GzipHandler(h)
}
