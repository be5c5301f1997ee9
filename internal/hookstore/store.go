package hookstore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"time"

	"stockhook/internal/blobstore"
)

const (
	DefaultMaxBodyBytes int64 = 256 * 1024
	DefaultPreviewBytes       = 256 * 1024
	DefaultKeepCount          = 15
)

// Options configures one Store. Stores share no state, so several may run
// side by side over different directories.
type Options struct {
	Dir          string
	MaxBodyBytes int64
	PreviewBytes int
	// KeepCount bounds the number of records retained after each ingest.
	// Zero or negative disables eviction.
	KeepCount int

	Clock  func() time.Time
	Rand   io.Reader
	Logger *slog.Logger
}

// Store persists records and their body blobs in a single directory.
type Store struct {
	blobs        blobstore.BlobStore
	dir          string
	maxBodyBytes int64
	previewBytes int
	keepCount    int
	clock        func() time.Time
	rand         io.Reader
	logger       *slog.Logger
}

// PutInput describes one inbound body.
type PutInput struct {
	ContentType string
	// DeclaredLength is the sender's Content-Length, or negative when unknown.
	DeclaredLength int64
	Body           io.Reader

	RemoteAddr string
	Path       string
	UserAgent  string
}

// Blob is an open body stream for one record.
type Blob struct {
	Reader      io.ReadCloser
	Size        int64
	ContentType string
	Name        string
}

// Open creates the store directory if needed and returns a Store.
func Open(opts Options) (*Store, error) {
	local, err := blobstore.NewLocal(opts.Dir)
	if err != nil {
		return nil, err
	}
	return newStore(local, local.Root(), opts), nil
}

func newStore(blobs blobstore.BlobStore, dir string, opts Options) *Store {
	s := &Store{
		blobs:        blobs,
		dir:          dir,
		maxBodyBytes: opts.MaxBodyBytes,
		previewBytes: opts.PreviewBytes,
		keepCount:    opts.KeepCount,
		clock:        opts.Clock,
		rand:         opts.Rand,
		logger:       opts.Logger,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.previewBytes <= 0 {
		s.previewBytes = DefaultPreviewBytes
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.rand == nil {
		s.rand = rand.Reader
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Dir returns the directory holding records and blobs.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBodyBytes returns the ingest ceiling.
func (s *Store) MaxBodyBytes() int64 {
	return s.maxBodyBytes
}

// Put ingests one body. The blob is written first, then the record
// document; neither is visible before it is complete. Retention runs after
// a successful write and never fails the ingest.
func (s *Store) Put(ctx context.Context, in PutInput) (Record, error) {
	var zero Record
	if in.Body == nil || in.DeclaredLength == 0 {
		return zero, ErrEmptyBody
	}
	if in.DeclaredLength > s.maxBodyBytes {
		return zero, ErrPayloadTooLarge
	}

	now := s.clock().UTC().Truncate(time.Second)
	id, err := NewID(now, s.rand)
	if err != nil {
		return zero, ioFailure("allocate id", err)
	}
	contentType := NormalizeContentType(in.ContentType)
	bodyRef := blobName(id)

	stream := NewIntegrityReader(in.Body, in.DeclaredLength, s.maxBodyBytes, s.previewBytes)
	if _, err := s.blobs.Put(ctx, bodyRef, stream); err != nil {
		return zero, classifyWriteError("write body", err)
	}
	sum := stream.Sum()

	truncated := sum.Size > int64(len(sum.Preview))
	record := Record{
		ID:               id,
		ReceivedAt:       now,
		ContentType:      contentType,
		BodyRef:          bodyRef,
		BodySize:         sum.Size,
		BodySHA256:       sum.SHA256,
		PreviewTruncated: truncated,
		Decoded:          DecodePreview(contentType, sum.Preview),
		RemoteAddr:       in.RemoteAddr,
		Path:             in.Path,
		UserAgent:        in.UserAgent,
		Preview:          sum.Preview,
	}

	doc, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		s.discardBlob(bodyRef)
		return zero, ioFailure("encode record", err)
	}
	if err := s.blobs.WriteFile(ctx, recordName(id), doc); err != nil {
		s.discardBlob(bodyRef)
		return zero, classifyWriteError("write record", err)
	}

	s.logger.Debug("record stored", "id", id, "content_type", contentType, "body_size", sum.Size)

	if s.keepCount > 0 {
		if _, err := s.Enforce(ctx, s.keepCount); err != nil {
			s.logger.Warn("retention failed", "id", id, "error", err)
		}
	}
	return record, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
// Documents that vanish or fail to parse are skipped.
func (s *Store) List(ctx context.Context, limit int) ([]RecordSummary, error) {
	names, err := s.recordNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RecordSummary, 0, min(len(names), max(limit, 0)))
	for _, name := range names {
		if limit > 0 && len(out) >= limit {
			break
		}
		record, size, err := s.readRecord(ctx, idFromRecordName(name))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Debug("skipping unreadable record", "name", name, "error", err)
			continue
		}
		out = append(out, record.Summary(size))
	}
	return out, nil
}

// Get returns the record for id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	id, err := ValidateID(id)
	if err != nil {
		return Record{}, err
	}
	record, _, err := s.readRecord(ctx, id)
	return record, err
}

// OpenBlob opens the body of record id for sequential reading. The caller
// closes Blob.Reader.
func (s *Store) OpenBlob(ctx context.Context, id string) (Blob, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return Blob{}, err
	}
	if record.BodyRef == "" {
		return Blob{}, fmt.Errorf("record %s has no body: %w", record.ID, ErrNotFound)
	}
	if !safeName(record.BodyRef) {
		return Blob{}, fmt.Errorf("%w: body_ref %q", ErrInvalidID, record.BodyRef)
	}

	rc, err := s.blobs.Open(ctx, record.BodyRef)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Blob{}, fmt.Errorf("body %s: %w", record.BodyRef, ErrNotFound)
		}
		return Blob{}, ioFailure("open body", err)
	}
	size := record.BodySize
	if info, err := s.blobs.Stat(ctx, record.BodyRef); err == nil {
		size = info.Size()
	}
	return Blob{
		Reader:      rc,
		Size:        size,
		ContentType: record.ContentType,
		Name:        record.BodyRef,
	}, nil
}

// Delete removes record id and then its blob.
func (s *Store) Delete(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if record.ID == "" {
		record.ID, _ = ValidateID(id)
	}
	return s.deleteRecord(ctx, record.ID, record.BodyRef)
}

func (s *Store) deleteRecord(ctx context.Context, id, bodyRef string) error {
	if err := s.blobs.Delete(ctx, recordName(id)); err != nil {
		return ioFailure("delete record", err)
	}
	if bodyRef == "" {
		bodyRef = blobName(id)
	}
	if !safeName(bodyRef) {
		return nil
	}
	if err := s.blobs.Delete(ctx, bodyRef); err != nil {
		s.logger.Warn("delete body failed", "id", id, "body_ref", bodyRef, "error", err)
	}
	return nil
}

// recordNames lists record documents, newest first.
func (s *Store) recordNames(ctx context.Context) ([]string, error) {
	names, err := s.blobs.List(ctx, recordSuffix)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, ioFailure("list records", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *Store) readRecord(ctx context.Context, id string) (Record, int64, error) {
	rc, err := s.blobs.Open(ctx, recordName(id))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Record{}, 0, ctxErr
		}
		return Record{}, 0, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Record{}, 0, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, int64(len(data)), fmt.Errorf("record %s: %w: %v", id, ErrCorrupt, err)
	}
	record.ID = id
	return record, int64(len(data)), nil
}

func (s *Store) discardBlob(bodyRef string) {
	if err := s.blobs.Delete(context.Background(), bodyRef); err != nil {
		s.logger.Warn("discard body failed", "body_ref", bodyRef, "error", err)
	}
}

func classifyWriteError(op string, err error) error {
	switch {
	case errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, ErrLengthMismatch),
		errors.Is(err, ErrEmptyBody),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return ioFailure(op, err)
	}
}
