package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/bryanwahyu/policywatch/internal/domain/changes"
	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
	"github.com/bryanwahyu/policywatch/internal/domain/snapshots"
)

type ChangeRepository struct {
	db *sql.DB
}

func NewChangeRepository(db *sql.DB) *ChangeRepository {
	return &ChangeRepository{db: db}
}

func (r *ChangeRepository) Create(ctx context.Context, c *domain.Change) error {
	const q = `
INSERT INTO policy_changes
(id, document_id, vendor_id, old_snapshot_id, new_snapshot_id,
 summary, impact, recommended_action,
 risk_level, risk_priority, categories, primary_bucket,
 is_noise, analysis_failed, notified, detected_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16);`
	detected := c.DetectedAt
	if detected.IsZero() {
		detected = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.DocumentID, c.VendorID, nullString(string(c.OldSnapshotID)), c.NewSnapshotID,
		c.Summary, c.Impact, c.Action,
		c.RiskLevel, c.RiskPriority, categoriesJSON(c.Categories), nullString(string(c.PrimaryBucket)),
		c.IsNoise, c.AnalysisFailed, c.Notified, detected,
	)
	if err != nil && strings.Contains(err.Error(), "analysis_failed") {
		const qOld = `
INSERT INTO policy_changes
(id, document_id, vendor_id, old_snapshot_id, new_snapshot_id,
 summary, impact, recommended_action,
 risk_level, risk_priority, categories, primary_bucket,
 is_noise, notified, detected_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);`
		_, err = r.db.ExecContext(ctx, qOld,
			c.ID, c.DocumentID, c.VendorID, nullString(string(c.OldSnapshotID)), c.NewSnapshotID,
			c.Summary, c.Impact, c.Action,
			c.RiskLevel, c.RiskPriority, categoriesJSON(c.Categories), nullString(string(c.PrimaryBucket)),
			c.IsNoise, c.Notified, detected,
		)
	}
	return err
}

func (r *ChangeRepository) Get(ctx context.Context, id domain.ChangeID) (*domain.Change, error) {
	const q = selectChange + ` WHERE id=$1 LIMIT 1;`
	c, err := scanChange(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *ChangeRepository) Update(ctx context.Context, id domain.ChangeID, u domain.AnalysisUpdate) error {
	const q = `
UPDATE policy_changes
SET summary=$1, impact=$2, recommended_action=$3,
    risk_level=$4, risk_priority=$5, categories=$6, primary_bucket=$7,
    is_noise=$8, analysis_failed=$9
WHERE id=$10;`
	_, err := r.db.ExecContext(ctx, q,
		u.Summary, u.Impact, u.Action,
		u.RiskLevel, u.RiskPriority, categoriesJSON(u.Categories), nullString(string(u.PrimaryBucket)),
		u.IsNoise, u.AnalysisFailed, id,
	)
	return err
}

func (r *ChangeRepository) MarkNotified(ctx context.Context, id domain.ChangeID) error {
	const q = `UPDATE policy_changes SET notified=TRUE WHERE id=$1;`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *ChangeRepository) CountByDocument(ctx context.Context, docID documents.DocumentID) (int, error) {
	const q = `SELECT COUNT(*) FROM policy_changes WHERE document_id=$1;`
	var n int
	if err := r.db.QueryRowContext(ctx, q, docID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ChangeRepository) Latest(ctx context.Context, limit int) ([]*domain.Change, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = selectChange + ` ORDER BY detected_at DESC LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Change
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const selectChange = `
SELECT id, document_id, vendor_id, old_snapshot_id, new_snapshot_id,
       summary, impact, recommended_action,
       risk_level, risk_priority, categories, primary_bucket,
       is_noise, analysis_failed, notified, detected_at
FROM policy_changes`

func scanChange(row rowScanner) (*domain.Change, error) {
	var c domain.Change
	var oldSnap, primary sql.NullString
	var cats string
	if err := row.Scan(
		&c.ID, &c.DocumentID, &c.VendorID, &oldSnap, &c.NewSnapshotID,
		&c.Summary, &c.Impact, &c.Action,
		&c.RiskLevel, &c.RiskPriority, &cats, &primary,
		&c.IsNoise, &c.AnalysisFailed, &c.Notified, &c.DetectedAt,
	); err != nil {
		return nil, err
	}
	c.OldSnapshotID = snapshots.SnapshotID(oldSnap.String)
	c.PrimaryBucket = classify.Bucket(primary.String)
	c.Categories = categoriesFromJSON(cats)
	return &c, nil
}
