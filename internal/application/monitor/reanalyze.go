package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bryanwahyu/policywatch/internal/domain/changes"
	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/diff"
	"github.com/bryanwahyu/policywatch/internal/domain/snapshots"
)

// Re-analysis precondition errors. Each case gets its own sentinel so
// callers can report a distinct, user-facing message.
var (
	ErrChangeNotFound  = errors.New("change not found")
	ErrSnapshotMissing = errors.New("snapshot missing for change")
	ErrSnapshotEmpty   = errors.New("snapshot content is empty")
	ErrEmptyDiff       = errors.New("recomputed diff is empty, nothing to analyze")
)

// Reanalyze re-fetches a change's two bounding snapshots, recomputes
// the diff and re-runs the analyzer, overwriting the change's analysis
// fields in place. Snapshot references are never touched, and the
// previous analysis survives any failure: the update happens only
// after a fully successful recomputation.
func (s *Service) Reanalyze(ctx context.Context, id changes.ChangeID) (*changes.Change, error) {
	ch, err := s.Changes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load change: %w", err)
	}
	if ch == nil {
		return nil, ErrChangeNotFound
	}

	oldSnap, newSnap, err := s.loadBounds(ctx, ch)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(oldSnap.Content) == "" || strings.TrimSpace(newSnap.Content) == "" {
		return nil, ErrSnapshotEmpty
	}

	d := diff.Compute(oldSnap.Content, newSnap.Content)
	if d.Empty() {
		// Identical snapshots; fabricating an analysis here would be lying.
		return nil, ErrEmptyDiff
	}

	label := string(ch.DocumentID)
	if doc, derr := s.Documents.Get(ctx, ch.DocumentID); derr == nil && doc != nil {
		label = fmt.Sprintf("%s (%s)", doc.Kind.Label(), doc.URL)
	}

	a := s.Analyzer.Analyze(ctx, label, d.Added, d.Removed, "")
	level := a.RiskLevel
	priority := a.RiskPriority
	if a.IsNoise {
		level = classify.RiskLow
		priority = classify.PriorityLow
	}

	upd := changes.AnalysisUpdate{
		Summary:        a.Summary,
		Impact:         a.Impact,
		Action:         a.Action,
		RiskLevel:      level,
		RiskPriority:   priority,
		Categories:     a.Categories,
		PrimaryBucket:  a.PrimaryBucket,
		IsNoise:        a.IsNoise,
		AnalysisFailed: a.AnalysisFailed,
	}
	if err := s.Changes.Update(ctx, ch.ID, upd); err != nil {
		return nil, fmt.Errorf("update change: %w", err)
	}

	ch.Summary = upd.Summary
	ch.Impact = upd.Impact
	ch.Action = upd.Action
	ch.RiskLevel = upd.RiskLevel
	ch.RiskPriority = upd.RiskPriority
	ch.Categories = upd.Categories
	ch.PrimaryBucket = upd.PrimaryBucket
	ch.IsNoise = upd.IsNoise
	ch.AnalysisFailed = upd.AnalysisFailed
	return ch, nil
}

func (s *Service) loadBounds(ctx context.Context, ch *changes.Change) (*snapshots.Snapshot, *snapshots.Snapshot, error) {
	if ch.OldSnapshotID == "" || ch.NewSnapshotID == "" {
		return nil, nil, ErrSnapshotMissing
	}
	oldSnap, err := s.Snapshots.Get(ctx, ch.OldSnapshotID)
	if err != nil {
		return nil, nil, fmt.Errorf("load old snapshot: %w", err)
	}
	newSnap, err := s.Snapshots.Get(ctx, ch.NewSnapshotID)
	if err != nil {
		return nil, nil, fmt.Errorf("load new snapshot: %w", err)
	}
	if oldSnap == nil || newSnap == nil {
		return nil, nil, ErrSnapshotMissing
	}
	return oldSnap, newSnap, nil
}
