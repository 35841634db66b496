package notify

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/policywatch/internal/domain/changes"
	"github.com/bryanwahyu/policywatch/internal/domain/classify"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
)

// Payload is the structured alert handed to delivery channels. The
// transports (email/Slack/webhook) live outside this service and apply
// their own severity filters and retry policy.
type Payload struct {
	Vendor            string             `json:"vendor"`
	DocumentType      string             `json:"document_type"`
	Severity          classify.RiskLevel `json:"severity"`
	Summary           string             `json:"summary"`
	Impact            string             `json:"impact,omitempty"`
	RecommendedAction string             `json:"recommended_action,omitempty"`
	Tags              []string           `json:"tags"`
	Link              string             `json:"link"`
}

// Dispatcher port for delivery collaborators.
type Dispatcher interface {
	Dispatch(ctx context.Context, p Payload) error
}

// Build assembles the alert payload for one persisted change. Pure
// function, no I/O.
func Build(c *changes.Change, d *documents.Document, v *documents.Vendor, baseURL string) Payload {
	vendorName := string(c.VendorID)
	if v != nil {
		vendorName = v.Name
	}
	docType := "Document"
	if d != nil {
		docType = d.Kind.Label()
	}

	tags := make([]string, 0, len(c.Categories))
	for _, b := range c.Categories {
		tags = append(tags, string(b))
	}

	return Payload{
		Vendor:            vendorName,
		DocumentType:      docType,
		Severity:          c.RiskLevel,
		Summary:           c.Summary,
		Impact:            c.Impact,
		RecommendedAction: c.Action,
		Tags:              tags,
		Link:              fmt.Sprintf("%s/changes/%s", baseURL, c.ID),
	}
}
