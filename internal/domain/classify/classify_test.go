package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	text := "You grant us a perpetual, royalty-free license. You may self-host the software."

	first := cfg.Detect(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, cfg.Detect(text))
	}
	assert.Equal(t, []Bucket{BucketOwnership, BucketExport}, first)
}

func TestPrimaryResolvesByPriorityOrder(t *testing.T) {
	cfg := DefaultConfig()
	matched := cfg.Detect("perpetual, royalty-free license and self-host rights")
	require.Len(t, matched, 2)

	primary, ok := cfg.Primary(matched)
	require.True(t, ok)
	assert.Equal(t, BucketOwnership, primary)
}

func TestPrimaryEmptySet(t *testing.T) {
	cfg := DefaultConfig()
	_, ok := cfg.Primary(nil)
	assert.False(t, ok)
}

func TestPrimaryFallbackOutsideOrder(t *testing.T) {
	cfg := Config{
		Buckets: map[Bucket]BucketDef{
			Bucket("custom"): {Name: "Custom", Priority: PriorityMedium, Keywords: []string{"widget"}},
		},
		// Order does not mention the custom bucket at all.
		PriorityOrder: []Bucket{BucketOwnership},
	}
	matched := cfg.Detect("a widget appeared")
	require.Equal(t, []Bucket{Bucket("custom")}, matched)

	primary, ok := cfg.Primary(matched)
	require.True(t, ok)
	assert.Equal(t, Bucket("custom"), primary)
}

func TestPriorityOf(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, PriorityLow, cfg.PriorityOf(nil))
	assert.Equal(t, PriorityCritical, cfg.PriorityOf([]Bucket{BucketExport, BucketOwnership}))
	assert.Equal(t, PriorityMedium, cfg.PriorityOf([]Bucket{BucketVisibility}))
	assert.Equal(t, PriorityHigh, cfg.PriorityOf([]Bucket{BucketPricing, BucketExport}))
}

func TestRiskFromPriority(t *testing.T) {
	assert.Equal(t, RiskHigh, RiskFromPriority(PriorityCritical))
	assert.Equal(t, RiskHigh, RiskFromPriority(PriorityHigh))
	assert.Equal(t, RiskMedium, RiskFromPriority(PriorityMedium))
	assert.Equal(t, RiskLow, RiskFromPriority(PriorityLow))
}

func TestPriorityFromRisk(t *testing.T) {
	assert.Equal(t, PriorityCritical, PriorityFromRisk(RiskHigh))
	assert.Equal(t, PriorityMedium, PriorityFromRisk(RiskMedium))
	assert.Equal(t, PriorityLow, PriorityFromRisk(RiskLow))
}

func TestDetectCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []Bucket{BucketDeprecation}, cfg.Detect("This API will be DEPRECATED next year"))
}

func TestInjectableConfig(t *testing.T) {
	// Custom tables do not touch package state.
	cfg := Config{
		Buckets: map[Bucket]BucketDef{
			BucketPricing: {Name: "Money", Priority: PriorityCritical, Keywords: []string{"moolah"}},
		},
		PriorityOrder: []Bucket{BucketPricing},
	}
	assert.Equal(t, []Bucket{BucketPricing}, cfg.Detect("more moolah required"))
	assert.Empty(t, DefaultConfig().Detect("more moolah required"))
}
