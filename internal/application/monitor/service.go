package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/policywatch/internal/application"
	"github.com/bryanwahyu/policywatch/internal/application/analyzer"
	"github.com/bryanwahyu/policywatch/internal/application/notify"
	"github.com/bryanwahyu/policywatch/internal/domain/changes"
	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/content"
	"github.com/bryanwahyu/policywatch/internal/domain/diff"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
	"github.com/bryanwahyu/policywatch/internal/domain/snapshots"
)

// Policy holds the safety-net thresholds. All comparisons against
// these are strict (>), matching the documented boundary behavior.
type Policy struct {
	MinContentLength        int
	StaleBaseline           time.Duration
	ReplacementRatio        float64
	ReplacementMinSentences int
	BatchBudget             time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MinContentLength:        200,
		StaleBaseline:           30 * 24 * time.Hour,
		ReplacementRatio:        0.8,
		ReplacementMinSentences: 100,
		BatchBudget:             300 * time.Second,
	}
}

// ReplacementSummary is recorded on a change when the full-replacement
// guard fires instead of calling the analyzer.
const ReplacementSummary = "Document content was replaced wholesale (likely a page redesign or language change). Baseline re-established; no substantive policy delta identified."

// Analyzer port; satisfied by application/analyzer.Service and by
// deterministic stubs in tests.
type Analyzer interface {
	Analyze(ctx context.Context, docLabel string, added, removed []string, effectiveDate string) analyzer.Analysis
}

// Archiver stores the raw HTML behind a snapshot. Best effort: archive
// failures are logged, never fatal to a run.
type Archiver interface {
	Archive(ctx context.Context, key string, html string) (string, error)
}

// Status tags the per-document outcome of one pipeline run.
type Status string

const (
	StatusChanged         Status = "changed"
	StatusNoChange        Status = "no_change"
	StatusFetchEmpty      Status = "fetch_empty"
	StatusStaleReset      Status = "stale_baseline_reset"
	StatusFullReplacement Status = "full_replacement_baseline"
	StatusFirstScan       Status = "first_scan_calibration"
	StatusError           Status = "error"
)

// Outcome is the result record for one document in a batch run.
type Outcome struct {
	DocumentID documents.DocumentID `json:"document_id"`
	VendorID   documents.VendorID   `json:"vendor_id"`
	Status     Status               `json:"status"`
	ChangeID   changes.ChangeID     `json:"change_id,omitempty"`
	RiskLevel  classify.RiskLevel   `json:"risk_level,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Service orchestrates the change-detection pipeline for monitored
// documents. Safe for concurrent use; all per-run state lives on the
// stack of RunDocument.
type Service struct {
	Documents  documents.Repository
	Snapshots  snapshots.Repository
	Changes    changes.Repository
	Fetcher    content.Fetcher
	Analyzer   Analyzer
	Dispatcher notify.Dispatcher // optional
	Archive    Archiver          // optional
	Clock      application.Clock
	Policy     Policy
	ProductURL string
}

// RunAll processes every active document of every active vendor.
// Documents are independent: one document's failure is recorded as an
// error outcome and the batch continues. The caller bounds the batch
// with ctx (see Policy.BatchBudget); documents not reached before the
// deadline are simply picked up next cycle.
func (s *Service) RunAll(ctx context.Context) []Outcome {
	docs, err := s.Documents.ListActive(ctx)
	if err != nil {
		log.Printf("monitor: list active documents: %v", err)
		return []Outcome{{Status: StatusError, Error: err.Error()}}
	}

	out := make([]Outcome, 0, len(docs))
	for _, doc := range docs {
		if ctx.Err() != nil {
			log.Printf("monitor: batch budget exhausted, %d of %d documents processed", len(out), len(docs))
			break
		}
		o := s.RunDocument(ctx, doc)
		log.Printf("monitor: doc=%s vendor=%s status=%s change=%s", doc.ID, doc.VendorID, o.Status, o.ChangeID)
		out = append(out, o)
	}
	return out
}

// runState carries one document through the guard chain.
type runState struct {
	doc  *documents.Document
	now  time.Time
	page content.Page

	prior *snapshots.Snapshot
	snap  *snapshots.Snapshot

	d                  diff.Result
	oldCount, newCount int

	analysis       analyzer.Analysis
	effectiveLevel classify.RiskLevel
	priorChanges   int

	change *changes.Change
}

// step is one stage of the pipeline. A non-nil Outcome terminates the
// run; a nil, nil return continues to the next step. Once any guard
// fires, no later step executes.
type step func(ctx context.Context, st *runState) (*Outcome, error)

func (s *Service) steps() []step {
	return []step{
		s.fetchStep,
		s.emptyContentGuard,
		s.fingerprintStep,
		s.staleBaselineGuard,
		s.diffStep,
		s.fullReplacementGuard,
		s.analyzeStep,
		s.noiseStep,
		s.firstScanGuard,
		s.persistStep,
		s.notifyStep,
	}
}

// RunDocument executes the full guard chain for one document.
func (s *Service) RunDocument(ctx context.Context, doc *documents.Document) Outcome {
	st := &runState{doc: doc, now: s.Clock.Now()}
	for _, fn := range s.steps() {
		terminal, err := fn(ctx, st)
		if err != nil {
			return Outcome{DocumentID: doc.ID, VendorID: doc.VendorID, Status: StatusError, Error: err.Error()}
		}
		if terminal != nil {
			return *terminal
		}
	}
	// The chain always terminates in notifyStep.
	return Outcome{DocumentID: doc.ID, VendorID: doc.VendorID, Status: StatusError, Error: "pipeline ended without outcome"}
}

func (s *Service) outcome(st *runState, status Status) *Outcome {
	o := &Outcome{DocumentID: st.doc.ID, VendorID: st.doc.VendorID, Status: status}
	if st.change != nil {
		o.ChangeID = st.change.ID
		o.RiskLevel = st.change.RiskLevel
	}
	return o
}

// 1. Fetch. A failed fetch is a terminal error outcome; the checked
// timestamp is deliberately not advanced so the failure stays visible.
func (s *Service) fetchStep(ctx context.Context, st *runState) (*Outcome, error) {
	page, err := s.Fetcher.Fetch(ctx, st.doc.URL)
	if err != nil {
		return nil, err
	}
	st.page = page
	return nil, nil
}

// 2. Empty-content guard: a blocked or error page must not poison the
// snapshot history, so nothing is fingerprinted or persisted.
func (s *Service) emptyContentGuard(_ context.Context, st *runState) (*Outcome, error) {
	if len(st.page.Text) < s.Policy.MinContentLength {
		return s.outcome(st, StatusFetchEmpty), nil
	}
	return nil, nil
}

// 3+4. Fingerprint compare, then persist the new snapshot as soon as a
// distinct fingerprint is observed. The checked timestamp moves first:
// the fetch succeeded regardless of what the comparison finds.
func (s *Service) fingerprintStep(ctx context.Context, st *runState) (*Outcome, error) {
	if err := s.Documents.Touch(ctx, st.doc.ID, &st.now, nil); err != nil {
		return nil, fmt.Errorf("touch checked: %w", err)
	}

	prior, err := s.Snapshots.Latest(ctx, st.doc.ID)
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	st.prior = prior

	hash := diff.Fingerprint(st.page.Text)
	if prior != nil && prior.ContentHash == hash {
		return s.outcome(st, StatusNoChange), nil
	}

	snap := &snapshots.Snapshot{
		ID:          snapshots.SnapshotID(uuid.New().String()),
		DocumentID:  st.doc.ID,
		ContentHash: hash,
		Content:     st.page.Text,
		CapturedAt:  st.now,
	}
	if s.Archive != nil {
		key := fmt.Sprintf("%s/%s/%s.html", st.doc.VendorID, st.doc.ID, snap.ID)
		if url, aerr := s.Archive.Archive(ctx, key, st.page.HTML); aerr != nil {
			log.Printf("monitor: archive snapshot doc=%s: %v", st.doc.ID, aerr)
		} else {
			snap.ArchiveURL = url
		}
	}
	if err := s.Snapshots.Create(ctx, snap); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	st.snap = snap
	return nil, nil
}

// 5. Stale-baseline guard: a diff against a baseline older than the
// staleness window is a reset, not a meaningful change signal.
func (s *Service) staleBaselineGuard(ctx context.Context, st *runState) (*Outcome, error) {
	if st.prior != nil && st.now.Sub(st.prior.CapturedAt) > s.Policy.StaleBaseline {
		if err := s.Documents.Touch(ctx, st.doc.ID, nil, &st.now); err != nil {
			return nil, fmt.Errorf("touch changed: %w", err)
		}
		return s.outcome(st, StatusStaleReset), nil
	}
	return nil, nil
}

// 6. Diff. A fingerprint mismatch with an empty sentence diff means a
// whitespace-level edit: the new snapshot is already the baseline, but
// there is nothing to analyze.
func (s *Service) diffStep(_ context.Context, st *runState) (*Outcome, error) {
	oldText := ""
	if st.prior != nil {
		oldText = st.prior.Content
	}
	st.d = diff.Compute(oldText, st.page.Text)
	st.oldCount = len(diff.Sentences(oldText))
	st.newCount = len(diff.Sentences(st.page.Text))

	if st.d.Empty() {
		return s.outcome(st, StatusNoChange), nil
	}
	return nil, nil
}

// 7. Full-replacement guard: near-total churn over a large document
// indicates a redesign or language swap. Record a low-risk noise
// change to re-anchor the baseline and skip the analyzer entirely.
func (s *Service) fullReplacementGuard(ctx context.Context, st *runState) (*Outcome, error) {
	changed := len(st.d.Added) + len(st.d.Removed)
	ratio := diff.Ratio(st.d, st.oldCount, st.newCount)
	if !(ratio > s.Policy.ReplacementRatio && changed > s.Policy.ReplacementMinSentences) {
		return nil, nil
	}

	st.change = s.newChange(st)
	st.change.Summary = ReplacementSummary
	st.change.RiskLevel = classify.RiskLow
	st.change.RiskPriority = classify.PriorityLow
	st.change.Categories = []classify.Bucket{}
	st.change.IsNoise = true

	if err := s.Changes.Create(ctx, st.change); err != nil {
		return nil, fmt.Errorf("create change: %w", err)
	}
	if err := s.Documents.Touch(ctx, st.doc.ID, nil, &st.now); err != nil {
		return nil, fmt.Errorf("touch changed: %w", err)
	}
	return s.outcome(st, StatusFullReplacement), nil
}

// 8. Semantic analysis. Analyze never fails; a dead model degrades to
// the keyword classifier inside the analyzer.
func (s *Service) analyzeStep(ctx context.Context, st *runState) (*Outcome, error) {
	label := fmt.Sprintf("%s (%s)", st.doc.Kind.Label(), st.doc.URL)
	st.analysis = s.Analyzer.Analyze(ctx, label, st.d.Added, st.d.Removed, st.page.EffectiveDate)
	st.effectiveLevel = st.analysis.RiskLevel
	return nil, nil
}

// 9. Noise normalization: an explicit noise verdict caps the risk at
// low no matter what level the model suggested.
func (s *Service) noiseStep(_ context.Context, st *runState) (*Outcome, error) {
	if st.analysis.IsNoise {
		st.effectiveLevel = classify.RiskLow
		st.analysis.RiskPriority = classify.PriorityLow
	}
	return nil, nil
}

// 10. First-scan calibration: a document's first-ever comparison that
// resolves to noise or low risk is baseline drift, not a policy edit.
// Suppress it entirely.
func (s *Service) firstScanGuard(ctx context.Context, st *runState) (*Outcome, error) {
	n, err := s.Changes.CountByDocument(ctx, st.doc.ID)
	if err != nil {
		return nil, fmt.Errorf("count prior changes: %w", err)
	}
	st.priorChanges = n
	if n == 0 && (st.analysis.IsNoise || st.effectiveLevel == classify.RiskLow) {
		if err := s.Documents.Touch(ctx, st.doc.ID, nil, &st.now); err != nil {
			return nil, fmt.Errorf("touch changed: %w", err)
		}
		return s.outcome(st, StatusFirstScan), nil
	}
	return nil, nil
}

// 11. Persist the change with all analysis fields.
func (s *Service) persistStep(ctx context.Context, st *runState) (*Outcome, error) {
	st.change = s.newChange(st)
	st.change.Summary = st.analysis.Summary
	st.change.Impact = st.analysis.Impact
	st.change.Action = st.analysis.Action
	st.change.RiskLevel = st.effectiveLevel
	st.change.RiskPriority = st.analysis.RiskPriority
	st.change.Categories = st.analysis.Categories
	st.change.PrimaryBucket = st.analysis.PrimaryBucket
	st.change.IsNoise = st.analysis.IsNoise
	st.change.AnalysisFailed = st.analysis.AnalysisFailed

	if err := s.Changes.Create(ctx, st.change); err != nil {
		return nil, fmt.Errorf("create change: %w", err)
	}
	return nil, nil
}

// 12+13. Notify when the effective risk clears the bar, then advance
// the changed timestamp. Dispatch failures are logged, not fatal, and
// leave the notified flag unset.
func (s *Service) notifyStep(ctx context.Context, st *runState) (*Outcome, error) {
	if st.effectiveLevel != classify.RiskLow && !st.analysis.IsNoise && s.Dispatcher != nil {
		vendor, err := s.Documents.GetVendor(ctx, st.doc.VendorID)
		if err != nil {
			log.Printf("monitor: load vendor %s: %v", st.doc.VendorID, err)
		}
		payload := notify.Build(st.change, st.doc, vendor, s.ProductURL)
		if err := s.Dispatcher.Dispatch(ctx, payload); err != nil {
			log.Printf("monitor: dispatch change=%s: %v", st.change.ID, err)
		} else if err := s.Changes.MarkNotified(ctx, st.change.ID); err != nil {
			log.Printf("monitor: mark notified change=%s: %v", st.change.ID, err)
		} else {
			st.change.Notified = true
		}
	}

	if err := s.Documents.Touch(ctx, st.doc.ID, nil, &st.now); err != nil {
		return nil, fmt.Errorf("touch changed: %w", err)
	}
	return s.outcome(st, StatusChanged), nil
}

func (s *Service) newChange(st *runState) *changes.Change {
	c := &changes.Change{
		ID:            changes.ChangeID(uuid.New().String()),
		DocumentID:    st.doc.ID,
		VendorID:      st.doc.VendorID,
		NewSnapshotID: st.snap.ID,
		DetectedAt:    st.now,
	}
	if st.prior != nil {
		c.OldSnapshotID = st.prior.ID
	}
	return c
}
