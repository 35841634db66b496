package analyzer

import (
	"context"
	"log"
	"strings"
	"time"

	domai "github.com/bryanwahyu/policywatch/internal/domain/ai"
	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/infra/ai/prompt"
)

// FallbackSummary is the sentinel summary used whenever the model call
// failed and the keyword classifier's output was used instead.
// Downstream consumers match on it to detect "no real analysis".
const FallbackSummary = "Policy change detected. Review the document for details."

const defaultTimeout = 60 * time.Second

// Analysis is the combined semantic + keyword judgment for one diff.
type Analysis struct {
	Summary        string             `json:"summary"`
	Impact         string             `json:"impact,omitempty"`
	Action         string             `json:"recommended_action,omitempty"`
	RiskLevel      classify.RiskLevel `json:"risk_level"`
	RiskPriority   classify.Priority  `json:"risk_priority"`
	PrimaryBucket  classify.Bucket    `json:"primary_bucket,omitempty"`
	Categories     []classify.Bucket  `json:"categories"`
	IsNoise        bool               `json:"is_noise"`
	AnalysisFailed bool               `json:"analysis_failed"`
}

// RiskResolver decides the effective risk level once both the model and
// the keyword classifier have spoken. Kept as a swappable strategy so
// the override policy is testable on its own.
type RiskResolver func(model, keyword classify.RiskLevel) classify.RiskLevel

// TrustModel privileges the model's contextual judgment over keyword
// heuristics: keyword matching cannot tell a translation from a
// substantive rewrite, the model can.
func TrustModel(model, _ classify.RiskLevel) classify.RiskLevel { return model }

// Service runs the keyword classifier, then escalates to the model.
// Analyze never returns an error: any model failure degrades to the
// deterministic keyword result with AnalysisFailed set.
type Service struct {
	Completer domai.Completer
	Buckets   classify.Config
	Resolve   RiskResolver
	Timeout   time.Duration
}

func New(completer domai.Completer, buckets classify.Config) *Service {
	return &Service{
		Completer: completer,
		Buckets:   buckets,
		Resolve:   TrustModel,
		Timeout:   defaultTimeout,
	}
}

// Analyze classifies the diff and asks the model for a semantic risk
// judgment, with the keyword context passed along as auxiliary signal.
func (s *Service) Analyze(ctx context.Context, docLabel string, added, removed []string, effectiveDate string) Analysis {
	matched := s.Buckets.Detect(strings.Join(added, " ") + " " + strings.Join(removed, " "))
	primary, _ := s.Buckets.Primary(matched)
	kwPriority := s.Buckets.PriorityOf(matched)
	kwRisk := classify.RiskFromPriority(kwPriority)

	fallback := Analysis{
		Summary:        FallbackSummary,
		RiskLevel:      kwRisk,
		RiskPriority:   kwPriority,
		PrimaryBucket:  primary,
		Categories:     matched,
		AnalysisFailed: true,
	}

	if s.Completer == nil {
		return fallback
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.Completer.Complete(cctx,
		prompt.GetSystemPrompt(),
		prompt.GetUserPrompt(docLabel, added, removed, s.Buckets, matched, effectiveDate),
	)
	if err != nil {
		log.Printf("analyzer fallback: doc=%s err=%v", docLabel, err)
		return fallback
	}

	assessed, err := prompt.ParseAssessment(raw)
	if err != nil {
		log.Printf("analyzer fallback: doc=%s err=%v", docLabel, err)
		return fallback
	}

	resolve := s.Resolve
	if resolve == nil {
		resolve = TrustModel
	}
	level := resolve(assessed.RiskLevel(), kwRisk)

	return Analysis{
		Summary:       assessed.Summary,
		Impact:        assessed.Impact,
		Action:        assessed.RecommendedAction,
		RiskLevel:     level,
		RiskPriority:  classify.PriorityFromRisk(level),
		PrimaryBucket: primary,
		Categories:    matched,
		IsNoise:       assessed.IsNoise,
	}
}
