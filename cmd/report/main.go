package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ignite/outreach-tracker/internal/config"
	"github.com/ignite/outreach-tracker/internal/stats"
	"github.com/ignite/outreach-tracker/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] <campaign-id>\n", os.Args[0])
		os.Exit(2)
	}
	campaignID := flag.Arg(0)

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := store.New(cfg.Tracking.DataDir)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	if !st.Exists(campaignID) {
		log.Fatalf("no data for campaign %q in %s", campaignID, cfg.Tracking.DataDir)
	}

	rec, err := st.Load(context.Background(), campaignID)
	if err != nil {
		log.Fatalf("loading campaign record: %v", err)
	}

	report := stats.BuildReport(campaignID, rec)
	path, err := stats.WriteReport(cfg.Campaign.ReportDir, report)
	if err != nil {
		log.Fatalf("writing report: %v", err)
	}

	fmt.Printf("campaign %s\n", campaignID)
	fmt.Printf("  leads:   %d\n", report.TotalLeads)
	fmt.Printf("  sent:    %d\n", report.EmailsSent)
	fmt.Printf("  opened:  %d (%.2f%%)\n", report.EmailsOpened, report.OpenRate)
	fmt.Printf("  clicked: %d (%.2f%%)\n", report.LinksClicked, report.ClickRate)
	fmt.Printf("  hot:     %d\n", len(report.HotLeads))
	fmt.Printf("  warm:    %d\n", len(report.WarmLeads))
	fmt.Printf("report written to %s\n", path)
}
