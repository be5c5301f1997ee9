package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Ingest.
	mux.Handle("POST /webhook", s.withToken(http.HandlerFunc(s.handleIngest)))
	mux.Handle("POST /hook", s.withToken(http.HandlerFunc(s.handleIngest)))

	// Browser views.
	mux.Handle("GET /{$}", s.withReadAuth(s.compressed(http.HandlerFunc(s.handleIndex))))
	mux.Handle("GET /index.html", s.withReadAuth(s.compressed(http.HandlerFunc(s.handleIndex))))
	mux.Handle("GET /view", s.withReadAuth(s.compressed(http.HandlerFunc(s.handleView))))
	mux.Handle("GET /raw", s.withReadAuth(http.HandlerFunc(s.handleRawQuery)))

	// Records API.
	mux.Handle("GET /v1/records", s.withReadAuth(s.compressed(http.HandlerFunc(s.handleListRecords))))
	mux.Handle("GET /v1/records/{id}", s.withReadAuth(http.HandlerFunc(s.handleGetRecord)))
	mux.Handle("GET /v1/records/{id}/raw", s.withReadAuth(http.HandlerFunc(s.handleRawPath)))
	mux.Handle("DELETE /v1/records/{id}", s.withToken(http.HandlerFunc(s.handleDeleteRecord)))

	return mux
}
