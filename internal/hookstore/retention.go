package hookstore

import (
	"context"
	"encoding/json"
	"io"
)

// RetentionResult reports one retention pass.
type RetentionResult struct {
	Kept    int `json:"kept"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Enforce deletes every record beyond the keep newest, document first and
// body second. A stale document that no longer parses is still removed;
// its body may then leak. keep <= 0 disables eviction.
//
// Only listing failures are returned; per-record failures are logged and
// counted.
func (s *Store) Enforce(ctx context.Context, keep int) (RetentionResult, error) {
	var result RetentionResult
	if keep <= 0 {
		return result, nil
	}

	names, err := s.recordNames(ctx)
	if err != nil {
		return result, err
	}
	if len(names) <= keep {
		result.Kept = len(names)
		return result, nil
	}
	result.Kept = keep

	for _, name := range names[keep:] {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		id := idFromRecordName(name)
		bodyRef := s.staleBodyRef(ctx, name)
		if err := s.deleteRecord(ctx, id, bodyRef); err != nil {
			result.Failed++
			s.logger.Warn("evict record failed", "id", id, "error", err)
			continue
		}
		result.Deleted++
		s.logger.Debug("evicted record", "id", id, "body_ref", bodyRef)
	}
	return result, nil
}

// staleBodyRef reads the body reference of a document about to be evicted.
// It returns "" when the document cannot be parsed.
func (s *Store) staleBodyRef(ctx context.Context, name string) string {
	rc, err := s.blobs.Open(ctx, name)
	if err != nil {
		return ""
	}
	defer rc.Close()

	var doc struct {
		BodyRef string `json:"body_ref"`
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return doc.BodyRef
}
