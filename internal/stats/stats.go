// Package stats tracks per-user upload metadata: the timestamp of the most
// recent accepted upload (used for rate limiting), a monotonically increasing
// total, and one history entry per accepted upload.
package stats

import "context"

// FileEntry is one accepted upload in a user's history.
type FileEntry struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	URL     string `json:"url"`
}

// Stats is the upload record for one user. A user with no uploads yet is
// represented by the zero value.
type Stats struct {
	LastUpload int64       `json:"last_upload"` // unix milliseconds
	Total      int64       `json:"total"`
	Files      []FileEntry `json:"files"`
}

// Store persists per-user upload stats.
type Store interface {
	// Get returns the stats for userID. A user with no record yet yields the
	// zero Stats, not an error.
	Get(ctx context.Context, userID string) (Stats, error)
	// RecordUpload merge-upserts one accepted upload: sets last_upload to now,
	// increments total by one, and appends entry to the history. Fields not
	// touched by this write are preserved.
	RecordUpload(ctx context.Context, userID string, now int64, entry FileEntry) error
}
