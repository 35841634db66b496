package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/policywatch/internal/domain/classify"
)

type stubCompleter struct {
	response string
	err      error
	lastUser string
}

func (s *stubCompleter) Complete(_ context.Context, _, user string) (string, error) {
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newService(c *stubCompleter) *Service {
	var svc *Service
	if c == nil {
		svc = New(nil, classify.DefaultConfig())
	} else {
		svc = New(c, classify.DefaultConfig())
	}
	svc.Timeout = time.Second
	return svc
}

func TestAnalyzeModelOverridesKeywords(t *testing.T) {
	// Keyword engine would say high (ownership is critical); the model
	// judges it low and wins.
	stub := &stubCompleter{response: `{"summary":"Translated into German, no policy delta.","suggested_risk_level":"low","is_noise":true}`}
	svc := newService(stub)

	a := svc.Analyze(context.Background(), "Terms of Service",
		[]string{"Wir gewähren eine perpetual royalty-free license"}, nil, "")

	assert.False(t, a.AnalysisFailed)
	assert.Equal(t, classify.RiskLow, a.RiskLevel)
	assert.Equal(t, classify.PriorityLow, a.RiskPriority)
	// The keyword bucket is kept for categorization even when the
	// model overrides the priority.
	assert.Equal(t, classify.BucketOwnership, a.PrimaryBucket)
	assert.True(t, a.IsNoise)
}

func TestAnalyzeModelHighMapsToCriticalPriority(t *testing.T) {
	stub := &stubCompleter{response: `{"summary":"Liability cap slashed.","impact":"Exposure grows.","recommended_action":"Renegotiate.","suggested_risk_level":"high"}`}
	svc := newService(stub)

	a := svc.Analyze(context.Background(), "Terms of Service",
		[]string{"Liability is capped at one month of fees"}, nil, "")

	require.False(t, a.AnalysisFailed)
	assert.Equal(t, classify.RiskHigh, a.RiskLevel)
	assert.Equal(t, classify.PriorityCritical, a.RiskPriority)
	assert.Equal(t, "Liability cap slashed.", a.Summary)
	assert.Equal(t, "Exposure grows.", a.Impact)
	assert.Equal(t, "Renegotiate.", a.Action)
}

func TestAnalyzeFallbackOnError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("connection refused")}
	svc := newService(stub)

	added := []string{"We may share your data with partners", "Liability is limited to fees paid"}
	a := svc.Analyze(context.Background(), "Terms of Service", added, nil, "")

	assert.True(t, a.AnalysisFailed)
	assert.Equal(t, FallbackSummary, a.Summary)

	// Fallback must equal the independently computed keyword result.
	cfg := classify.DefaultConfig()
	matched := cfg.Detect("We may share your data with partners Liability is limited to fees paid")
	wantPriority := cfg.PriorityOf(matched)
	assert.Equal(t, wantPriority, a.RiskPriority)
	assert.Equal(t, classify.RiskFromPriority(wantPriority), a.RiskLevel)

	primary, _ := cfg.Primary(matched)
	assert.Equal(t, primary, a.PrimaryBucket)
	assert.Equal(t, matched, a.Categories)
}

func TestAnalyzeFallbackOnMalformedJSON(t *testing.T) {
	stub := &stubCompleter{response: "I think this change is fine, risk low."}
	svc := newService(stub)

	a := svc.Analyze(context.Background(), "Pricing", []string{"Prices increase by 20%"}, nil, "")
	assert.True(t, a.AnalysisFailed)
	assert.Equal(t, FallbackSummary, a.Summary)
	// pricing bucket is high priority -> high risk in the fallback
	assert.Equal(t, classify.RiskHigh, a.RiskLevel)
}

func TestAnalyzeNilCompleter(t *testing.T) {
	svc := newService(nil)
	a := svc.Analyze(context.Background(), "Terms of Service", []string{"No keywords here at all"}, nil, "")
	assert.True(t, a.AnalysisFailed)
	assert.Equal(t, classify.RiskLow, a.RiskLevel)
	assert.Empty(t, a.Categories)
}

func TestAnalyzePassesDiffAndDateToPrompt(t *testing.T) {
	stub := &stubCompleter{response: `{"summary":"ok","suggested_risk_level":"low"}`}
	svc := newService(stub)

	svc.Analyze(context.Background(), "Privacy Policy",
		[]string{"added sentence"}, []string{"removed sentence"}, "March 1, 2026")

	assert.Contains(t, stub.lastUser, "+ added sentence")
	assert.Contains(t, stub.lastUser, "- removed sentence")
	assert.Contains(t, stub.lastUser, "March 1, 2026")
}

func TestCustomResolver(t *testing.T) {
	stub := &stubCompleter{response: `{"summary":"ok","suggested_risk_level":"low"}`}
	svc := newService(stub)
	// A paranoid resolver that always takes the worse of the two.
	svc.Resolve = func(model, keyword classify.RiskLevel) classify.RiskLevel {
		if keyword == classify.RiskHigh {
			return keyword
		}
		return model
	}

	a := svc.Analyze(context.Background(), "Terms of Service",
		[]string{"perpetual irrevocable license to your content"}, nil, "")
	assert.Equal(t, classify.RiskHigh, a.RiskLevel)
}
