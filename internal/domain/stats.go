package domain

// LeadEngagement is the per-recipient slice of a stats report. Hot leads
// clicked; warm leads opened but never clicked. The two sets are disjoint.
type LeadEngagement struct {
	Company string `json:"company"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Opened  bool   `json:"opened"`
	Clicked bool   `json:"clicked"`
}

// CampaignStats holds the aggregate engagement numbers for one campaign.
// Rates are percentages, zero-guarded against empty campaigns.
type CampaignStats struct {
	CampaignID      string  `json:"campaign_id"`
	TotalRecipients int     `json:"total_recipients"`
	TotalOpens      int     `json:"total_opens"`
	TotalClicks     int     `json:"total_clicks"`
	OpenRate        float64 `json:"open_rate"`
	ClickRate       float64 `json:"click_rate"`
	ClickToOpenRate float64 `json:"click_to_open_rate"`

	HotLeads  []LeadEngagement `json:"hot_leads"`
	WarmLeads []LeadEngagement `json:"warm_leads"`
}
