package domain

import (
	"strings"
	"time"
)

// Lead is one prospect from the recipient list. The column set mirrors the
// scraped lead export: company, contact person, email, industry, location.
type Lead struct {
	ID       string `json:"id"`
	Company  string `json:"company"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	Industry string `json:"industry"`
	Location string `json:"location"`
}

// FirstName extracts the contact's first name for personalization.
// Falls back to "there" when no contact name is known.
func (l Lead) FirstName() string {
	name := strings.TrimSpace(l.Contact)
	if name == "" {
		return "there"
	}
	if idx := strings.IndexByte(name, ' '); idx > 0 {
		return name[:idx]
	}
	return name
}

// OutboundMessage is a fully-rendered message ready for dispatch. By the
// time a message reaches this struct, template substitution and tracking
// injection are complete.
type OutboundMessage struct {
	TrackingID string `json:"tracking_id"`
	CampaignID string `json:"campaign_id"`
	To         string `json:"to"`
	ToName     string `json:"to_name,omitempty"`
	Subject    string `json:"subject"`
	HTML       string `json:"html"`
}

// SendResult is returned by a dispatch provider after attempting delivery.
type SendResult struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"message_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
	Error     string    `json:"error,omitempty"`
}
