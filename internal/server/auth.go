package server

import (
	"net/http"

	"stockhook/internal/auth"
)

// withToken refuses requests that do not carry the shared token. With no
// token configured every request is refused.
func (s *Server) withToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.verifier.Configured() {
			s.writeErrorReq(w, r, http.StatusInternalServerError, tokenNotConfigured())
			return
		}
		if !s.verifier.Verify(auth.TokenFromRequest(r)) {
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withReadAuth applies withToken only when reads are protected.
func (s *Server) withReadAuth(next http.Handler) http.Handler {
	protected := s.withToken(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.protectReads {
			next.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}
