package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/outreach-tracker/internal/domain"
)

// CampaignReport is the offline summary written after a campaign run. It
// extends the live stats with send counts and a generation timestamp.
type CampaignReport struct {
	ReportID    string    `json:"report_id"`
	CampaignID  string    `json:"campaign_id"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalLeads   int `json:"total_leads"`
	EmailsSent   int `json:"emails_sent"`
	EmailsOpened int `json:"emails_opened"`
	LinksClicked int `json:"links_clicked"`

	OpenRate        float64 `json:"open_rate"`
	ClickRate       float64 `json:"click_rate"`
	ClickToOpenRate float64 `json:"click_to_open_rate"`

	HotLeads  []domain.LeadEngagement `json:"hot_leads"`
	WarmLeads []domain.LeadEngagement `json:"warm_leads"`
}

// BuildReport assembles a CampaignReport from a record snapshot. Unlike the
// live /stats rates (which divide by recipient count), report open/click
// rates divide by the number of confirmed sends, since unsent shell entries
// say nothing about deliverability.
func BuildReport(campaignID string, rec domain.CampaignRecord) *CampaignReport {
	st := Compute(campaignID, rec)

	sent := 0
	for _, entry := range rec {
		if entry.SentTime != nil {
			sent++
		}
	}

	return &CampaignReport{
		ReportID:        uuid.New().String(),
		CampaignID:      campaignID,
		GeneratedAt:     time.Now().UTC(),
		TotalLeads:      st.TotalRecipients,
		EmailsSent:      sent,
		EmailsOpened:    st.TotalOpens,
		LinksClicked:    st.TotalClicks,
		OpenRate:        rate(st.TotalOpens, sent),
		ClickRate:       rate(st.TotalClicks, sent),
		ClickToOpenRate: st.ClickToOpenRate,
		HotLeads:        st.HotLeads,
		WarmLeads:       st.WarmLeads,
	}
}

// WriteReport saves the report as campaign_report_{campaignID}.json under
// dir and returns the full path.
func WriteReport(dir string, r *CampaignReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("stats: creating report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("campaign_report_%s.json", r.CampaignID))
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("stats: encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("stats: writing report: %w", err)
	}
	return path, nil
}
