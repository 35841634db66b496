package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintStability(t *testing.T) {
	text := "We may share your data with partners. Liability is limited."
	assert.Equal(t, Fingerprint(text), Fingerprint(text))
	assert.NotEqual(t, Fingerprint(text), Fingerprint(text+" "))
	assert.Len(t, Fingerprint(""), 64)
}

func TestSentences(t *testing.T) {
	got := Sentences("First. Second!  Third? ")
	assert.Equal(t, []string{"First", "Second", "Third"}, got)

	assert.Empty(t, Sentences(""))
	assert.Empty(t, Sentences("... !!! ???"))
}

func TestComputeIdentical(t *testing.T) {
	a := "We may share your data. Liability is limited to fees paid."
	res := Compute(a, a)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Removed)
}

func TestComputeSymmetry(t *testing.T) {
	a := "Alpha stays. Beta goes."
	b := "Alpha stays. Gamma arrives."

	ab := Compute(a, b)
	ba := Compute(b, a)
	assert.Equal(t, ab.Added, ba.Removed)
	assert.Equal(t, ab.Removed, ba.Added)
}

func TestComputeSetSemantics(t *testing.T) {
	// Reordering sentences is not a change.
	res := Compute("A one. B two. C three.", "C three. A one. B two.")
	assert.True(t, res.Empty())

	// Neither is duplicating an existing sentence.
	res = Compute("A one. B two.", "A one. B two. A one.")
	assert.True(t, res.Empty())
}

func TestComputeAddedRemoved(t *testing.T) {
	before := "We may share your data with partners. Liability is limited to fees paid."
	after := "We may share your data with affiliates. Liability is capped at three months of fees paid."

	res := Compute(before, after)
	assert.Equal(t, []string{
		"We may share your data with affiliates",
		"Liability is capped at three months of fees paid",
	}, res.Added)
	assert.Equal(t, []string{
		"We may share your data with partners",
		"Liability is limited to fees paid",
	}, res.Removed)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(Result{}, 0, 0))

	r := Result{Added: make([]string, 60), Removed: make([]string, 41)}
	assert.InDelta(t, 101.0/120.0, Ratio(r, 120, 100), 1e-9)
}
