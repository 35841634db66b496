package changes

import (
	"time"

	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
	"github.com/bryanwahyu/policywatch/internal/domain/snapshots"
)

// ChangeID identifier type
type ChangeID string

// Aggregate Root: Change, the persisted record of one analysis-worthy
// difference between two snapshots of the same document.
//
// OldSnapshotID is empty only for a bootstrap change recorded on a
// document's very first capture, when there was no baseline to diff
// against. Apart from the notified flag and re-analysis overwrites of
// the analysis fields, a change is immutable history.
type Change struct {
	ID             ChangeID              `json:"id"`
	DocumentID     documents.DocumentID  `json:"document_id"`
	VendorID       documents.VendorID    `json:"vendor_id"`
	OldSnapshotID  snapshots.SnapshotID  `json:"old_snapshot_id,omitempty"`
	NewSnapshotID  snapshots.SnapshotID  `json:"new_snapshot_id"`
	Summary        string                `json:"summary"`
	Impact         string                `json:"impact,omitempty"`
	Action         string                `json:"recommended_action,omitempty"`
	RiskLevel      classify.RiskLevel    `json:"risk_level"`
	RiskPriority   classify.Priority     `json:"risk_priority"`
	Categories     []classify.Bucket     `json:"categories"`
	PrimaryBucket  classify.Bucket       `json:"primary_bucket,omitempty"`
	IsNoise        bool                  `json:"is_noise"`
	AnalysisFailed bool                  `json:"analysis_failed"`
	Notified       bool                  `json:"notified"`
	DetectedAt     time.Time             `json:"detected_at"`
}
