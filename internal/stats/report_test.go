package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach-tracker/internal/domain"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := BuildReport("camp1", domain.CampaignRecord{
		"camp1_a_11111111": {Email: "a@x.test", Opened: true},
	})

	path, err := WriteReport(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "campaign_report_camp1.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded CampaignReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.ReportID, decoded.ReportID)
	assert.Equal(t, "camp1", decoded.CampaignID)
	assert.Equal(t, 1, decoded.TotalLeads)
}
