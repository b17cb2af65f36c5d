// Package sendloop runs the campaign send loop: one pass over the
// recipient list, strictly sequential, with randomized delays between
// sends so the outbound pattern doesn't trip spam heuristics.
//
// The scheduler depends only on the narrow collaborator contracts below;
// the concrete lead source, template renderer, and dispatch provider are
// wired in by the caller.
package sendloop

import (
	"context"

	"github.com/ignite/outreach-tracker/internal/domain"
)

// Sender dispatches a single rendered message. Implementations must be
// safe for sequential reuse across a run; the loop never calls Send
// concurrently.
type Sender interface {
	Send(ctx context.Context, msg *domain.OutboundMessage) (*domain.SendResult, error)
}

// LeadSource supplies the ordered recipient list for a campaign run.
type LeadSource interface {
	Leads(ctx context.Context) ([]domain.Lead, error)
}

// Renderer produces the personalized subject and HTML body for one lead.
type Renderer interface {
	Render(lead domain.Lead) (subject, html string, err error)
}

// TrackingInjector rewrites rendered HTML to carry the open pixel and
// click redirect for one tracking identifier.
type TrackingInjector interface {
	InjectTracking(html, trackingID string) string
}
