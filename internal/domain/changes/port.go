package changes

import (
	"context"

	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
)

// AnalysisUpdate carries the fields a re-analysis may overwrite.
// Snapshot references are deliberately absent.
type AnalysisUpdate struct {
	Summary        string
	Impact         string
	Action         string
	RiskLevel      classify.RiskLevel
	RiskPriority   classify.Priority
	Categories     []classify.Bucket
	PrimaryBucket  classify.Bucket
	IsNoise        bool
	AnalysisFailed bool
}

// Repository port for change persistence.
// Get returns (nil, nil) when the row does not exist.
type Repository interface {
	Create(ctx context.Context, c *Change) error
	Get(ctx context.Context, id ChangeID) (*Change, error)
	Update(ctx context.Context, id ChangeID, u AnalysisUpdate) error
	MarkNotified(ctx context.Context, id ChangeID) error
	CountByDocument(ctx context.Context, docID documents.DocumentID) (int, error)
	Latest(ctx context.Context, limit int) ([]*Change, error)
}
