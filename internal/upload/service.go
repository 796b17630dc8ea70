// Package upload implements the image ingestion pipeline: rate limiting,
// base64 decoding, rendition generation, object-store writes and per-user
// stats bookkeeping — plus deletion of all renditions of one upload.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/upix/service/internal/render"
	"github.com/upix/service/internal/stats"
	"github.com/upix/service/internal/storage"
)

const (
	folderPrefix = "uploads"

	// maxSizeMB caps decoded payloads. The comparison is strict, so a payload
	// of exactly 8 MiB is accepted.
	maxSizeMB = 8

	// minInterval is the minimum gap between two accepted uploads from the
	// same user. The check reads a possibly stale last_upload, so the bound
	// is best-effort under concurrency.
	minInterval = time.Second
)

// ErrMissingFile is returned when the file field is absent or empty.
var ErrMissingFile = errors.New("missing file")

// ErrBadEncoding is returned when the file field is not valid base64.
var ErrBadEncoding = errors.New("invalid base64 payload")

// ErrRateLimited is returned when a user uploads faster than one per second.
var ErrRateLimited = errors.New("upload rate exceeded")

// ErrTooLarge is returned when the decoded payload exceeds the size cap.
var ErrTooLarge = errors.New("file exceeds size limit")

// ErrNotFound is returned by Delete when no stored object matches the id.
var ErrNotFound = errors.New("no objects match id")

// Result is the outcome of one accepted upload.
type Result struct {
	ID       string `json:"id"`
	SizeMB   string `json:"sizeMB"`
	Original string `json:"original"`
	Webp     string `json:"webp"`
	Thumb    string `json:"thumb"`
}

// Service orchestrates the ingestion pipeline against an object store and a
// stats store.
type Service struct {
	store storage.Storage
	stats stats.Store
}

// NewService creates an upload Service.
func NewService(store storage.Storage, st stats.Store) *Service {
	return &Service{store: store, stats: st}
}

// Ingest runs the full pipeline for one upload: rate-limit check, decode,
// size guard, rendition writes, stats update. Steps run in this order; the
// rendition writes themselves run concurrently but all complete before the
// stats update. A failure after some renditions are written leaves them in
// place — orphans are never referenced and a later Delete removes them.
func (s *Service) Ingest(ctx context.Context, userID, file string) (*Result, error) {
	st, err := s.stats.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read upload stats: %w", err)
	}

	now := time.Now()
	nowMS := now.UnixMilli()
	if st.LastUpload > 0 && nowMS-st.LastUpload < minInterval.Milliseconds() {
		return nil, ErrRateLimited
	}

	data, err := decodePayload(file)
	if err != nil {
		return nil, err
	}

	sizeMB := float64(len(data)) / 1024 / 1024
	if sizeMB > maxSizeMB {
		return nil, ErrTooLarge
	}

	id := uuid.NewString()
	folder := folderFor(now, id)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range render.Profiles {
		p := p
		g.Go(func() error {
			out, err := render.Transform(data, p)
			if err != nil {
				return fmt.Errorf("render %s: %w", p.Name, err)
			}
			key := folder + "/" + p.Filename
			if err := s.store.Put(gctx, key, out, p.ContentType); err != nil {
				return fmt.Errorf("store %s: %w", p.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	originURL := s.store.PublicURL(folder + "/" + render.Origin.Filename)
	entry := stats.FileEntry{ID: id, Created: nowMS, URL: originURL}
	if err := s.stats.RecordUpload(ctx, userID, nowMS, entry); err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	return &Result{
		ID:       id,
		SizeMB:   fmt.Sprintf("%.2f", sizeMB),
		Original: originURL,
		Webp:     s.store.PublicURL(folder + "/" + render.WebP.Filename),
		Thumb:    s.store.PublicURL(folder + "/" + render.Thumb.Filename),
	}, nil
}

// Delete removes every stored object whose key contains id and returns the
// matched keys. Deletes run concurrently with no transactional guarantee; a
// mid-batch failure leaves partial deletion, and a repeat call is idempotent
// against objects already removed.
func (s *Service) Delete(ctx context.Context, id string) ([]string, error) {
	keys, err := s.store.List(ctx, folderPrefix+"/")
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	var targets []string
	for _, k := range keys {
		if strings.Contains(k, id) {
			targets = append(targets, k)
		}
	}
	if len(targets) == 0 {
		return nil, ErrNotFound
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, k := range targets {
		k := k
		g.Go(func() error {
			if err := s.store.Delete(gctx, k); err != nil {
				return fmt.Errorf("delete %q: %w", k, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return targets, nil
}

// decodePayload strips an optional data-URI prefix and base64-decodes the
// remainder. Both padded and unpadded encodings are accepted.
func decodePayload(file string) ([]byte, error) {
	if file == "" {
		return nil, ErrMissingFile
	}
	if parts := strings.Split(file, ","); len(parts) > 1 {
		file = parts[1]
	}
	data, err := base64.StdEncoding.DecodeString(file)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}
	return data, nil
}
