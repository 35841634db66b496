package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/policywatch/internal/domain/documents"
	domain "github.com/bryanwahyu/policywatch/internal/domain/snapshots"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Create(ctx context.Context, s *domain.Snapshot) error {
	const q = `
INSERT INTO policy_snapshots (id, document_id, content_hash, content, archive_url, captured_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	captured := s.CapturedAt
	if captured.IsZero() {
		captured = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.DocumentID, s.ContentHash, s.Content, nullString(s.ArchiveURL), captured,
	)
	return err
}

func (r *SnapshotRepository) Latest(ctx context.Context, docID documents.DocumentID) (*domain.Snapshot, error) {
	const q = `
SELECT id, document_id, content_hash, content, archive_url, captured_at
FROM policy_snapshots
WHERE document_id=$1 ORDER BY captured_at DESC LIMIT 1;`
	return scanSnapshot(r.db.QueryRowContext(ctx, q, docID))
}

func (r *SnapshotRepository) Get(ctx context.Context, id domain.SnapshotID) (*domain.Snapshot, error) {
	const q = `
SELECT id, document_id, content_hash, content, archive_url, captured_at
FROM policy_snapshots
WHERE id=$1 LIMIT 1;`
	return scanSnapshot(r.db.QueryRowContext(ctx, q, id))
}

func scanSnapshot(row *sql.Row) (*domain.Snapshot, error) {
	var s domain.Snapshot
	var archive sql.NullString
	err := row.Scan(&s.ID, &s.DocumentID, &s.ContentHash, &s.Content, &archive, &s.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.ArchiveURL = archive.String
	return &s, nil
}
