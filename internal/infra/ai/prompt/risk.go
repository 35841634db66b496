package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/policywatch/internal/domain/classify"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior analyst reviewing changes to a SaaS vendor's legal or pricing document. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- suggested_risk_level must be one of: low, medium, high.
- summary is 1-3 plain sentences describing what actually changed for a customer.
- impact describes the practical consequence for a paying customer; recommended_action says what they should do about it.
- set is_noise true when the change is cosmetic: wording, formatting, typos, reordering.
- Purely linguistic or translation changes with no substantive policy delta are ALWAYS low risk, regardless of which keyword categories matched. Keyword matches are auxiliary signal only; your contextual judgment is the primary signal, because keyword matching cannot tell a translation from a substantive rewrite.

Schema (example with empty values):
{
  "summary": "<string>",
  "impact": "<string>",
  "recommended_action": "<string>",
  "suggested_risk_level": "<low|medium|high>",
  "is_noise": false
}`
}

// GetUserPrompt lists the diff verbatim plus keyword-detected category
// context and the category taxonomy.
func GetUserPrompt(docLabel string, added, removed []string, cfg classify.Config, matched []classify.Bucket, effectiveDate string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Document: %s\n", docLabel)
	if effectiveDate != "" {
		fmt.Fprintf(&b, "Stated effective date: %s\n", effectiveDate)
	}

	b.WriteString("\nAdded sentences:\n")
	if len(added) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range added {
		fmt.Fprintf(&b, "+ %s\n", s)
	}

	b.WriteString("\nRemoved sentences:\n")
	if len(removed) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range removed {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	b.WriteString("\nKeyword-detected categories (auxiliary signal, not ground truth):\n")
	if len(matched) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range matched {
		if def, ok := cfg.Buckets[m]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
		}
	}

	b.WriteString("\nCategory taxonomy:\n")
	for _, bk := range cfg.PriorityOrder {
		if def, ok := cfg.Buckets[bk]; ok {
			fmt.Fprintf(&b, "- %s (%s): %s\n", bk, def.Name, def.Description)
		}
	}

	b.WriteString("\nRespond with the JSON object per schema.")
	return b.String()
}

// Assessment mirrors the schema demanded by the system prompt.
type Assessment struct {
	Summary           string `json:"summary"`
	Impact            string `json:"impact"`
	RecommendedAction string `json:"recommended_action"`
	SuggestedRisk     string `json:"suggested_risk_level"`
	IsNoise           bool   `json:"is_noise"`
}

// ParseAssessment decodes and validates a model response. Code fences
// are tolerated even though the prompt forbids them.
func ParseAssessment(raw string) (Assessment, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var a Assessment
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return Assessment{}, fmt.Errorf("parse assessment: %w", err)
	}
	a.SuggestedRisk = strings.ToLower(strings.TrimSpace(a.SuggestedRisk))
	switch a.SuggestedRisk {
	case "low", "medium", "high":
	default:
		return Assessment{}, fmt.Errorf("parse assessment: bad risk level %q", a.SuggestedRisk)
	}
	if strings.TrimSpace(a.Summary) == "" {
		return Assessment{}, fmt.Errorf("parse assessment: empty summary")
	}
	return a, nil
}

// RiskLevel converts the validated string field to the domain type.
func (a Assessment) RiskLevel() classify.RiskLevel {
	return classify.RiskLevel(a.SuggestedRisk)
}
