package server

import (
	"bytes"
	"net/http"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context(), s.listLimit)
	if err != nil {
		s.writePageError(w, r, storeError(err))
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderIndex(&buf, s.renderer.IndexRows(summaries)); err != nil {
		s.writePageError(w, r, renderFailure(err))
		return
	}
	writeHTML(w, buf.Bytes())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.Get(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		s.writePageError(w, r, storeError(err))
		return
	}

	payload, full := s.viewPayload(r, record)
	page, err := s.renderer.Record(record, payload, full)
	if err != nil {
		s.writePageError(w, r, renderFailure(err))
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderView(&buf, page); err != nil {
		s.writePageError(w, r, renderFailure(err))
		return
	}
	writeHTML(w, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
