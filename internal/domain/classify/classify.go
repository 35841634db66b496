package classify

import (
	"sort"
	"strings"
)

// Bucket enum: what kind of policy change occurred.
type Bucket string

const (
	BucketOwnership   Bucket = "ownership"
	BucketTraining    Bucket = "training"
	BucketVisibility  Bucket = "visibility"
	BucketExport      Bucket = "export"
	BucketPricing     Bucket = "pricing"
	BucketDeprecation Bucket = "deprecation"
)

// Priority enum
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// RiskLevel is the coarser legacy severity scheme used by alerting.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// BucketDef describes one risk bucket: display name, priority floor,
// lowercase substring triggers and a short description for prompts.
type BucketDef struct {
	Name        string
	Priority    Priority
	Keywords    []string
	Description string
}

// Config is the full classification table. It is a plain value so tests
// can substitute their own buckets without touching package state.
type Config struct {
	Buckets map[Bucket]BucketDef

	// PriorityOrder resolves ties when several buckets match.
	PriorityOrder []Bucket
}

// DefaultConfig returns the production bucket table.
func DefaultConfig() Config {
	return Config{
		Buckets: map[Bucket]BucketDef{
			BucketOwnership: {
				Name:        "Content Ownership & Liability",
				Priority:    PriorityCritical,
				Description: "Changes to IP ownership, content licensing, liability or indemnification terms.",
				Keywords: []string{
					"intellectual property", "perpetual", "royalty-free", "irrevocable",
					"license to", "sublicens", "derivative works", "ownership",
					"liability", "indemnif", "assign your",
				},
			},
			BucketTraining: {
				Name:        "AI Training & Data Use",
				Priority:    PriorityCritical,
				Description: "Customer data being used to train or improve machine-learning models.",
				Keywords: []string{
					"train", "machine learning", "artificial intelligence",
					"model training", "improve our models", "ai model", "ai features",
				},
			},
			BucketDeprecation: {
				Name:        "Product & API Deprecation",
				Priority:    PriorityHigh,
				Description: "Features, plans or API versions being sunset, retired or discontinued.",
				Keywords: []string{
					"deprecat", "sunset", "end of life", "end-of-life",
					"discontinu", "no longer support", "retired",
				},
			},
			BucketVisibility: {
				Name:        "Data Visibility & Sharing",
				Priority:    PriorityMedium,
				Description: "Customer data or content becoming visible to, or shared with, other parties.",
				Keywords: []string{
					"publicly visible", "public profile", "searchable", "disclose",
					"share your data", "third-party access", "made public", "with partners",
				},
			},
			BucketExport: {
				Name:        "Data Export & Portability",
				Priority:    PriorityMedium,
				Description: "Data export, portability, self-hosting or migration rights.",
				Keywords: []string{
					"export", "self-host", "data portability", "download your data",
					"migration", "takeout",
				},
			},
			BucketPricing: {
				Name:        "Pricing & Billing",
				Priority:    PriorityHigh,
				Description: "Prices, fees, billing cadence, seat counts or renewal terms.",
				Keywords: []string{
					"price", "pricing", "fee", "billing", "subscription",
					"per seat", "per-seat", "surcharge", "renewal rate",
				},
			},
		},
		PriorityOrder: []Bucket{
			BucketOwnership, BucketTraining, BucketDeprecation,
			BucketVisibility, BucketExport, BucketPricing,
		},
	}
}

// Detect returns the buckets whose keywords appear in text, in priority
// order. Matching is case-insensitive substring; the first keyword hit
// per bucket short-circuits.
func (c Config) Detect(text string) []Bucket {
	lower := strings.ToLower(text)
	var out []Bucket
	for _, b := range c.order() {
		def := c.Buckets[b]
		for _, kw := range def.Keywords {
			if strings.Contains(lower, kw) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// Primary resolves the highest-priority bucket from a matched set.
// Returns false for an empty set.
func (c Config) Primary(matched []Bucket) (Bucket, bool) {
	if len(matched) == 0 {
		return "", false
	}
	in := make(map[Bucket]bool, len(matched))
	for _, b := range matched {
		in[b] = true
	}
	for _, b := range c.PriorityOrder {
		if in[b] {
			return b, true
		}
	}
	// Matched a bucket that is not in the configured order; take any.
	return matched[0], true
}

// PriorityOf returns the highest priority level among matched buckets,
// or low when nothing matched.
func (c Config) PriorityOf(matched []Bucket) Priority {
	best := PriorityLow
	for _, b := range matched {
		def, ok := c.Buckets[b]
		if !ok {
			continue
		}
		if priorityRank(def.Priority) < priorityRank(best) {
			best = def.Priority
		}
	}
	return best
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// order returns PriorityOrder plus any configured buckets missing from it,
// so custom configs without an explicit order still detect deterministically.
func (c Config) order() []Bucket {
	seen := make(map[Bucket]bool, len(c.PriorityOrder))
	out := make([]Bucket, 0, len(c.Buckets))
	for _, b := range c.PriorityOrder {
		if _, ok := c.Buckets[b]; ok && !seen[b] {
			out = append(out, b)
			seen[b] = true
		}
	}
	// Stable order for leftovers: reuse the default bucket order.
	for _, b := range []Bucket{BucketOwnership, BucketTraining, BucketDeprecation, BucketVisibility, BucketExport, BucketPricing} {
		if _, ok := c.Buckets[b]; ok && !seen[b] {
			out = append(out, b)
			seen[b] = true
		}
	}
	var rest []Bucket
	for b := range c.Buckets {
		if !seen[b] {
			rest = append(rest, b)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// RiskFromPriority collapses priority levels into the legacy
// three-valued risk scheme: critical and high both map to high.
func RiskFromPriority(p Priority) RiskLevel {
	switch p {
	case PriorityCritical, PriorityHigh:
		return RiskHigh
	case PriorityMedium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PriorityFromRisk maps a model-suggested risk level back onto a
// priority: high is treated as critical.
func PriorityFromRisk(l RiskLevel) Priority {
	switch l {
	case RiskHigh:
		return PriorityCritical
	case RiskMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
