package documents

import (
	"context"
	"time"
)

// Repository port (interface for persistence).
// Lookups return (nil, nil) when the row does not exist.
type Repository interface {
	ListActive(ctx context.Context) ([]*Document, error)
	Get(ctx context.Context, id DocumentID) (*Document, error)
	GetVendor(ctx context.Context, id VendorID) (*Vendor, error)

	// Touch updates the document timestamps; nil fields are left untouched.
	Touch(ctx context.Context, id DocumentID, checked, changed *time.Time) error
}
