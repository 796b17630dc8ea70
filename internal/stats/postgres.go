package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a single upload_stats table, one row per
// user. The increment and history append happen inside one upsert statement,
// so concurrent uploads from the same user never lose counts or entries.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore with the given connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the stats row for userID, or the zero Stats when absent.
func (s *PostgresStore) Get(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	var files []byte
	err := s.db.QueryRow(ctx,
		`SELECT last_upload, total, files
		 FROM upload_stats WHERE user_id = $1`,
		userID,
	).Scan(&st.LastUpload, &st.Total, &files)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("get upload stats for %q: %w", userID, err)
	}
	if err := json.Unmarshal(files, &st.Files); err != nil {
		return Stats{}, fmt.Errorf("decode upload history for %q: %w", userID, err)
	}
	return st, nil
}

// RecordUpload upserts one accepted upload for userID.
func (s *PostgresStore) RecordUpload(ctx context.Context, userID string, now int64, entry FileEntry) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO upload_stats (user_id, last_upload, total, files)
		 VALUES ($1, $2, 1, jsonb_build_array($3::jsonb))
		 ON CONFLICT (user_id) DO UPDATE
		 SET last_upload = EXCLUDED.last_upload,
		     total       = upload_stats.total + 1,
		     files       = upload_stats.files || EXCLUDED.files`,
		userID, now, entryJSON,
	)
	if err != nil {
		return fmt.Errorf("record upload for %q: %w", userID, err)
	}
	return nil
}
