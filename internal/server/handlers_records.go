package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"stockhook/internal/api"
	"stockhook/internal/hookstore"
	"stockhook/internal/render"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryIntDefault(r, "limit", s.listLimit)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	resp := api.RecordListResponse{Records: make([]api.RecordSummary, 0, len(summaries))}
	for _, summary := range summaries {
		resp.Records = append(resp.Records, api.RecordSummary{
			ID:               summary.ID,
			ReceivedAt:       summary.ReceivedAt,
			ContentType:      summary.ContentType,
			BodySize:         summary.BodySize,
			DocSize:          summary.DocSize,
			PreviewTruncated: summary.PreviewTruncated,
			Decoded:          hookstore.DecodedKind(summary.Decoded),
			Title:            render.Title(summary.Decoded),
		})
	}
	resp.Count = len(resp.Records)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := hookstore.ValidateID(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.log().Info("record deleted", "id", id, "request_id", requestIDFromContext(r.Context()))
	s.writeJSON(w, http.StatusOK, api.DeleteResponse{ID: id, Deleted: true})
}

func (s *Server) handleRawPath(w http.ResponseWriter, r *http.Request) {
	if err := s.streamRaw(w, r, r.PathValue("id")); err != nil {
		s.writeStoreError(w, r, err)
	}
}

func (s *Server) handleRawQuery(w http.ResponseWriter, r *http.Request) {
	if err := s.streamRaw(w, r, r.URL.Query().Get("id")); err != nil {
		s.writePageError(w, r, storeError(err))
	}
}

// streamRaw writes the body of record id as a download. Errors are returned
// only while nothing has been written yet.
func (s *Server) streamRaw(w http.ResponseWriter, r *http.Request, id string) error {
	blob, err := s.store.OpenBlob(r.Context(), id)
	if err != nil {
		return err
	}
	defer blob.Reader.Close()

	contentType := blob.ContentType
	if contentType == "" {
		contentType = hookstore.DefaultContentType
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": blob.Name}))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return nil
	}
	n, err := io.Copy(w, blob.Reader)
	if err != nil && !errors.Is(err, r.Context().Err()) {
		s.log().Warn("raw download interrupted", "id", id, "written", n, "error", err)
	}
	return nil
}

// viewPayload picks what the view page renders: the whole body when it is
// small enough, otherwise the stored preview.
func (s *Server) viewPayload(r *http.Request, record hookstore.Record) (any, bool) {
	payload := render.Payload(record.Decoded)
	if !record.PreviewTruncated {
		return payload, true
	}
	if record.BodySize > s.renderMaxBytes {
		return payload, false
	}

	blob, err := s.store.OpenBlob(r.Context(), record.ID)
	if err != nil {
		s.log().Warn("open body for view failed", "id", record.ID, "error", err)
		return payload, false
	}
	defer blob.Reader.Close()

	data, err := io.ReadAll(io.LimitReader(blob.Reader, s.renderMaxBytes+1))
	if err != nil || int64(len(data)) > s.renderMaxBytes {
		s.log().Warn("read body for view failed", "id", record.ID, "bytes", len(data), "error", err)
		return payload, false
	}
	return render.Payload(hookstore.DecodePreview(record.ContentType, data)), true
}

func renderFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeRenderFailed, fmt.Errorf("render: %w", err))
}
