package snapshots

import (
	"context"

	"github.com/bryanwahyu/policywatch/internal/domain/documents"
)

// Repository port for snapshot persistence.
// Latest and Get return (nil, nil) when no row exists.
type Repository interface {
	Latest(ctx context.Context, docID documents.DocumentID) (*Snapshot, error)
	Get(ctx context.Context, id SnapshotID) (*Snapshot, error)
	Create(ctx context.Context, s *Snapshot) error
}
