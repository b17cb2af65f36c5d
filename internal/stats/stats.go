// Package stats computes derived engagement metrics from a campaign record
// snapshot and renders them into the campaign report consumed offline.
package stats

import (
	"math"
	"sort"

	"github.com/ignite/outreach-tracker/internal/domain"
)

// Compute aggregates a campaign record into totals, rates, and the hot/warm
// lead partition. Rates are percentages rounded to two decimals and defined
// as 0 when their denominator is 0. Hot (clicked) and warm (opened but not
// clicked) are mutually exclusive by construction.
func Compute(campaignID string, rec domain.CampaignRecord) domain.CampaignStats {
	st := domain.CampaignStats{
		CampaignID: campaignID,
		HotLeads:   []domain.LeadEngagement{},
		WarmLeads:  []domain.LeadEngagement{},
	}

	// Deterministic output order for reports and tests.
	ids := make([]string, 0, len(rec))
	for id := range rec {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		entry := rec[id]
		st.TotalRecipients++
		if entry.Opened {
			st.TotalOpens++
		}
		if entry.Clicked {
			st.TotalClicks++
		}

		eng := domain.LeadEngagement{
			Company: entry.Company,
			Contact: entry.Contact,
			Email:   entry.Email,
			Opened:  entry.Opened,
			Clicked: entry.Clicked,
		}
		switch {
		case entry.Clicked:
			st.HotLeads = append(st.HotLeads, eng)
		case entry.Opened:
			st.WarmLeads = append(st.WarmLeads, eng)
		}
	}

	st.OpenRate = rate(st.TotalOpens, st.TotalRecipients)
	st.ClickRate = rate(st.TotalClicks, st.TotalRecipients)
	st.ClickToOpenRate = rate(st.TotalClicks, st.TotalOpens)
	return st
}

func rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*100*100) / 100
}
