package hookstore

import (
	"context"
	"time"

	"stockhook/internal/blobstore"
)

// DefaultSweepGrace protects blobs and temp files of ingests still in flight.
const DefaultSweepGrace = 10 * time.Minute

// SweepOptions controls an orphan sweep.
type SweepOptions struct {
	Grace  time.Duration
	DryRun bool
}

// SweepResult reports one orphan sweep.
type SweepResult struct {
	OrphanBlobs    []string `json:"orphan_blobs"`
	StaleTemps     []string `json:"stale_temps"`
	ReclaimedBytes int64    `json:"reclaimed_bytes"`
	Failed         int      `json:"failed"`
	DryRun         bool     `json:"dry_run"`
}

// Sweep removes blobs no record references and abandoned temp files, both
// only once they are older than the grace period. It is never run by the
// ingest path.
func (s *Store) Sweep(ctx context.Context, opts SweepOptions) (SweepResult, error) {
	result := SweepResult{OrphanBlobs: []string{}, StaleTemps: []string{}, DryRun: opts.DryRun}
	grace := opts.Grace
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	cutoff := s.clock().Add(-grace)

	docs, err := s.recordNames(ctx)
	if err != nil {
		return result, err
	}
	referenced := make(map[string]struct{}, len(docs))
	for _, name := range docs {
		referenced[blobName(idFromRecordName(name))] = struct{}{}
		if ref := s.staleBodyRef(ctx, name); ref != "" {
			referenced[ref] = struct{}{}
		}
	}

	bodies, err := s.blobs.List(ctx, blobSuffix)
	if err != nil {
		return result, ioFailure("list bodies", err)
	}
	for _, name := range bodies {
		if _, ok := referenced[name]; ok {
			continue
		}
		if s.sweepOne(ctx, name, cutoff, opts.DryRun, &result) {
			result.OrphanBlobs = append(result.OrphanBlobs, name)
		}
	}

	temps, err := s.blobs.List(ctx, blobstore.TempSuffix)
	if err != nil {
		return result, ioFailure("list temp files", err)
	}
	for _, name := range temps {
		if s.sweepOne(ctx, name, cutoff, opts.DryRun, &result) {
			result.StaleTemps = append(result.StaleTemps, name)
		}
	}
	return result, nil
}

func (s *Store) sweepOne(ctx context.Context, name string, cutoff time.Time, dryRun bool, result *SweepResult) bool {
	info, err := s.blobs.Stat(ctx, name)
	if err != nil || info.ModTime().After(cutoff) {
		return false
	}
	if !dryRun {
		if err := s.blobs.Delete(ctx, name); err != nil {
			result.Failed++
			s.logger.Warn("sweep delete failed", "name", name, "error", err)
			return false
		}
	}
	result.ReclaimedBytes += info.Size()
	return true
}
