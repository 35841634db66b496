package documents

import (
	"time"
)

// ID types
type VendorID string
type DocumentID string

// Kind enum for monitored document types
type Kind string

const (
	KindTermsOfService Kind = "terms-of-service"
	KindPrivacyPolicy  Kind = "privacy-policy"
	KindAcceptableUse  Kind = "acceptable-use"
	KindPricing        Kind = "pricing"
	KindAPITerms       Kind = "api-terms"
	KindChangelog      Kind = "changelog"
)

// Label returns the human-readable name for a document kind.
func (k Kind) Label() string {
	switch k {
	case KindTermsOfService:
		return "Terms of Service"
	case KindPrivacyPolicy:
		return "Privacy Policy"
	case KindAcceptableUse:
		return "Acceptable Use Policy"
	case KindPricing:
		return "Pricing"
	case KindAPITerms:
		return "API Terms"
	case KindChangelog:
		return "Changelog"
	default:
		return string(k)
	}
}

// Vendor is the owner of a set of monitored documents.
type Vendor struct {
	ID     VendorID `json:"id"`
	Name   string   `json:"name"`
	Active bool     `json:"active"`
}

// Aggregate Root: Document, one monitored legal/pricing page.
// LastCheckedAt moves on every pipeline run; LastChangedAt only
// moves when a comparison produced something worth recording.
type Document struct {
	ID            DocumentID `json:"id"`
	VendorID      VendorID   `json:"vendor_id"`
	Kind          Kind       `json:"kind"`
	URL           string     `json:"url"`
	Active        bool       `json:"active"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastChangedAt *time.Time `json:"last_changed_at,omitempty"`
}
