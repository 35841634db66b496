package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/policywatch/internal/domain/changes"
	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
)

func sampleChange() *changes.Change {
	return &changes.Change{
		ID:         "ch-42",
		DocumentID: "doc-1",
		VendorID:   "vendor-1",
		Summary:    "Data sharing widened to affiliates.",
		Impact:     "Broader disclosure surface.",
		Action:     "Review the contract.",
		RiskLevel:  classify.RiskHigh,
		Categories: []classify.Bucket{classify.BucketVisibility, classify.BucketOwnership},
	}
}

func TestBuild(t *testing.T) {
	doc := &documents.Document{ID: "doc-1", VendorID: "vendor-1", Kind: documents.KindPrivacyPolicy}
	vendor := &documents.Vendor{ID: "vendor-1", Name: "Example Corp"}

	p := Build(sampleChange(), doc, vendor, "https://app.example.com")

	assert.Equal(t, "Example Corp", p.Vendor)
	assert.Equal(t, "Privacy Policy", p.DocumentType)
	assert.Equal(t, classify.RiskHigh, p.Severity)
	assert.Equal(t, "Data sharing widened to affiliates.", p.Summary)
	assert.Equal(t, "Broader disclosure surface.", p.Impact)
	assert.Equal(t, "Review the contract.", p.RecommendedAction)
	assert.Equal(t, []string{"visibility", "ownership"}, p.Tags)
	assert.Equal(t, "https://app.example.com/changes/ch-42", p.Link)
}

func TestBuildMissingLookups(t *testing.T) {
	// Vendor and document rows can lag behind a change row; the payload
	// degrades to identifiers instead of failing.
	p := Build(sampleChange(), nil, nil, "https://app.example.com")

	assert.Equal(t, "vendor-1", p.Vendor)
	assert.Equal(t, "Document", p.DocumentType)
	assert.NotNil(t, p.Tags)
}

func TestBuildNoCategories(t *testing.T) {
	c := sampleChange()
	c.Categories = nil
	p := Build(c, nil, nil, "")
	assert.Empty(t, p.Tags)
	assert.Equal(t, "/changes/ch-42", p.Link)
}
