package domain

import "time"

// EventAction enumerates the engagement events a recipient can produce.
type EventAction string

const (
	ActionOpened  EventAction = "opened"
	ActionClicked EventAction = "clicked"
)

// EventRecord is a single engagement event as it arrived at the tracking
// server. Timestamps are ingestion-time, not client-time; events are
// append-only in arrival order.
type EventRecord struct {
	Action    EventAction `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
	SourceIP  string      `json:"source_ip,omitempty"`
	UserAgent string      `json:"user_agent,omitempty"`
	TargetURL string      `json:"target_url,omitempty"` // click events only
}

// RecipientEntry is the per-tracking-id engagement state for one recipient.
// Lead fields are a snapshot taken at send time and never updated afterward.
// Opened and Clicked are monotonic: once true they are never reset.
type RecipientEntry struct {
	LeadID  string `json:"lead_id"`
	Company string `json:"company"`
	Contact string `json:"contact"`
	Email   string `json:"email"`

	SentTime     *time.Time `json:"sent_time"`
	Opened       bool       `json:"opened"`
	Clicked      bool       `json:"clicked"`
	Responded    bool       `json:"responded"` // set by an external process, not by this system
	LastActivity *time.Time `json:"last_activity"`

	Events []EventRecord `json:"events"`
}

// CampaignRecord maps tracking identifiers to recipient engagement state.
// One record corresponds to one durable per-campaign file.
type CampaignRecord map[string]*RecipientEntry
