package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/policywatch/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) ListActive(ctx context.Context) ([]*domain.Document, error) {
	const q = `
SELECT d.id, d.vendor_id, d.kind, d.url, d.active, d.last_checked_at, d.last_changed_at
FROM monitored_documents d
JOIN vendors v ON v.id = d.vendor_id
WHERE d.active AND v.active
ORDER BY d.vendor_id, d.id;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	const q = `
SELECT id, vendor_id, kind, url, active, last_checked_at, last_changed_at
FROM monitored_documents
WHERE id=$1 LIMIT 1;`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *DocumentRepository) GetVendor(ctx context.Context, id domain.VendorID) (*domain.Vendor, error) {
	const q = `SELECT id, name, active FROM vendors WHERE id=$1 LIMIT 1;`
	var v domain.Vendor
	err := r.db.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.Name, &v.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *DocumentRepository) Touch(ctx context.Context, id domain.DocumentID, checked, changed *time.Time) error {
	const q = `
UPDATE monitored_documents
SET last_checked_at = COALESCE($1, last_checked_at),
    last_changed_at = COALESCE($2, last_changed_at)
WHERE id=$3;`
	_, err := r.db.ExecContext(ctx, q, checked, changed, id)
	return err
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var checked, changed sql.NullTime
	if err := row.Scan(&d.ID, &d.VendorID, &d.Kind, &d.URL, &d.Active, &checked, &changed); err != nil {
		return nil, err
	}
	d.LastCheckedAt = nullTime(checked)
	d.LastChangedAt = nullTime(changed)
	return &d, nil
}
