package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/policywatch/internal/domain/classify"
)

func TestGetUserPromptListsDiffVerbatim(t *testing.T) {
	cfg := classify.DefaultConfig()
	added := []string{"We may train models on your content"}
	removed := []string{"Your content is never used for training"}
	matched := []classify.Bucket{classify.BucketTraining}

	p := GetUserPrompt("Terms of Service (https://example.com/tos)", added, removed, cfg, matched, "January 5, 2026")

	assert.Contains(t, p, "+ We may train models on your content")
	assert.Contains(t, p, "- Your content is never used for training")
	assert.Contains(t, p, "AI Training & Data Use")
	assert.Contains(t, p, "January 5, 2026")
	// Full taxonomy is always listed.
	for _, b := range cfg.PriorityOrder {
		assert.Contains(t, p, string(b))
	}
}

func TestGetUserPromptEmptySides(t *testing.T) {
	cfg := classify.DefaultConfig()
	p := GetUserPrompt("Pricing", []string{"New fee applies"}, nil, cfg, nil, "")

	assert.Contains(t, p, "Removed sentences:\n(none)")
	assert.NotContains(t, p, "Stated effective date")
}

func TestGetSystemPromptPolicy(t *testing.T) {
	s := GetSystemPrompt()
	// Translation-is-low is the load-bearing instruction; make sure a
	// prompt refactor does not drop it.
	assert.Contains(t, s, "translation")
	assert.Contains(t, s, "ALWAYS low risk")
	assert.Contains(t, s, "suggested_risk_level")
}

func TestParseAssessment(t *testing.T) {
	raw := `{"summary":"Liability cap reduced.","impact":"Less recourse.","recommended_action":"Review contracts.","suggested_risk_level":"HIGH","is_noise":false}`
	a, err := ParseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, "Liability cap reduced.", a.Summary)
	assert.Equal(t, classify.RiskHigh, a.RiskLevel())
	assert.False(t, a.IsNoise)
}

func TestParseAssessmentCodeFences(t *testing.T) {
	raw := "```json\n{\"summary\":\"ok\",\"suggested_risk_level\":\"low\"}\n```"
	a, err := ParseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, classify.RiskLow, a.RiskLevel())
}

func TestParseAssessmentRejectsGarbage(t *testing.T) {
	cases := []string{
		"not json at all",
		`{"summary":"ok","suggested_risk_level":"catastrophic"}`,
		`{"summary":"","suggested_risk_level":"low"}`,
		`{"suggested_risk_level":"low"}`,
	}
	for _, c := range cases {
		_, err := ParseAssessment(c)
		assert.Error(t, err, "input: %s", strings.TrimSpace(c))
	}
}
