package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/outreach-tracker/internal/config"
	"github.com/ignite/outreach-tracker/internal/dispatch"
	"github.com/ignite/outreach-tracker/internal/leads"
	"github.com/ignite/outreach-tracker/internal/mailing"
	"github.com/ignite/outreach-tracker/internal/pkg/logger"
	"github.com/ignite/outreach-tracker/internal/sendloop"
	"github.com/ignite/outreach-tracker/internal/stats"
	"github.com/ignite/outreach-tracker/internal/store"
	"github.com/ignite/outreach-tracker/internal/trackid"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	leadsPath := flag.String("leads", "", "leads CSV file (overrides config)")
	campaignID := flag.String("campaign", "", "campaign id (default: derived from start time)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *leadsPath != "" {
		cfg.Campaign.LeadsCSV = *leadsPath
	}
	if cfg.Campaign.LeadsCSV == "" {
		log.Fatal("no leads file: set campaign.leads_csv, LEADS_CSV, or -leads")
	}

	id := *campaignID
	if id == "" {
		id = trackid.NewCampaignID(time.Now())
	}
	if !trackid.ValidCampaignID(id) {
		log.Fatalf("invalid campaign id %q: must be alphanumeric", id)
	}

	st, err := store.New(cfg.Tracking.DataDir)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	scheduler := sendloop.New(
		sendloop.Config{
			CampaignID: id,
			BatchSize:  cfg.Campaign.BatchSize,
			DelayMin:   cfg.Campaign.DelayMin(),
			DelayMax:   cfg.Campaign.DelayMax(),
			AuditDir:   cfg.Campaign.SentDir,
		},
		st,
		leads.NewCSVSource(cfg.Campaign.LeadsCSV),
		mailing.NewRendererFromFiles(cfg.Campaign.SubjectTemplate, cfg.Campaign.BodyTemplate),
		mailing.NewInjector(cfg.Tracking.BaseURL),
		dispatch.NewHTTPSender(cfg.Dispatch.BaseURL, cfg.Dispatch.APIKey, cfg.Dispatch.Timeout()),
	)

	// Ctrl-C stops the loop between sends; the summary and report still
	// cover everything dispatched so far.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	summary, err := scheduler.Run(ctx)
	if err != nil && summary == nil {
		log.Fatalf("campaign run: %v", err)
	}
	if err != nil {
		logger.Warn("campaign run interrupted", "campaign_id", id, "error", err.Error())
	}

	fmt.Printf("campaign %s: %d leads, %d sent, %d failed, %d skipped\n",
		id, summary.Total, summary.Sent, summary.Failed, summary.Skipped)

	writeReport(st, id, cfg.Campaign.ReportDir)
}

func writeReport(st *store.Store, campaignID, dir string) {
	rec, err := st.Load(context.Background(), campaignID)
	if err != nil {
		logger.Error("report skipped, record not readable", "campaign_id", campaignID, "error", err.Error())
		return
	}
	report := stats.BuildReport(campaignID, rec)
	path, err := stats.WriteReport(dir, report)
	if err != nil {
		logger.Error("report not written", "campaign_id", campaignID, "error", err.Error())
		return
	}
	fmt.Printf("report written to %s (%d hot, %d warm)\n", path, len(report.HotLeads), len(report.WarmLeads))
}
