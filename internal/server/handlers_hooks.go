package server

import (
	"fmt"
	"net/http"

	"stockhook/internal/api"
	"stockhook/internal/hookstore"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.Put(r.Context(), hookstore.PutInput{
		ContentType:    r.Header.Get("Content-Type"),
		DeclaredLength: r.ContentLength,
		Body:           r.Body,
		RemoteAddr:     r.RemoteAddr,
		Path:           r.URL.Path,
		UserAgent:      r.UserAgent(),
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.log().Info("webhook stored",
		"id", record.ID,
		"content_type", record.ContentType,
		"body_size", record.BodySize,
		"remote_addr", r.RemoteAddr,
		"request_id", requestIDFromContext(r.Context()),
	)

	if wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, api.IngestResponse{
			ID:               record.ID,
			File:             record.ID + ".json",
			ReceivedAt:       record.ReceivedAt,
			ContentType:      record.ContentType,
			BodySize:         record.BodySize,
			BodySHA256:       record.BodySHA256,
			PreviewTruncated: record.PreviewTruncated,
		})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ok %s.json\n", record.ID)
}
