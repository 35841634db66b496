package snapshots

import (
	"time"

	"github.com/bryanwahyu/policywatch/internal/domain/documents"
)

// SnapshotID identifier type
type SnapshotID string

// Snapshot is one immutable capture of a document's normalized text.
// The most recent snapshot for a document is the comparison baseline
// for the next check. Rows are never updated after insert.
type Snapshot struct {
	ID          SnapshotID           `json:"id"`
	DocumentID  documents.DocumentID `json:"document_id"`
	ContentHash string               `json:"content_hash"`
	Content     string               `json:"content"`
	ArchiveURL  string               `json:"archive_url,omitempty"`
	CapturedAt  time.Time            `json:"captured_at"`
}
