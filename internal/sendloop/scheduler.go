package sendloop

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/outreach-tracker/internal/domain"
	"github.com/ignite/outreach-tracker/internal/pkg/logger"
	"github.com/ignite/outreach-tracker/internal/store"
	"github.com/ignite/outreach-tracker/internal/trackid"
)

// Config holds the per-run send loop settings.
type Config struct {
	CampaignID string

	// BatchSize is the number of sends between long breaks. Zero or
	// negative disables batch breaks.
	BatchSize int

	// DelayMin/DelayMax bound the randomized pause after each send. The
	// batch break is drawn from [2*DelayMax, 3*DelayMax].
	DelayMin time.Duration
	DelayMax time.Duration

	// AuditDir, when set, receives a copy of every rendered message that
	// was confirmed sent, under AuditDir/{campaignID}/.
	AuditDir string
}

// Summary reports the outcome of one campaign run.
type Summary struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Scheduler iterates the recipient list in order, dispatching one message
// per lead with two-tier randomized backoff. It is single-threaded by
// design: concurrency here would defeat the rate limiting.
type Scheduler struct {
	cfg      Config
	store    *store.Store
	source   LeadSource
	renderer Renderer
	injector TrackingInjector
	sender   Sender

	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Scheduler. All collaborators are required.
func New(cfg Config, st *store.Store, source LeadSource, renderer Renderer, injector TrackingInjector, sender Sender) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		store:    st,
		source:   source,
		renderer: renderer,
		injector: injector,
		sender:   sender,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepContext,
	}
}

// Run executes one campaign pass. A lead source failure aborts the run
// before any sends; a per-recipient dispatch failure is counted and the
// loop continues (no retry within a run). The returned Summary is valid
// even when Run returns a cancellation error.
func (s *Scheduler) Run(ctx context.Context) (*Summary, error) {
	leads, err := s.source.Leads(ctx)
	if err != nil {
		return nil, fmt.Errorf("sendloop: loading recipient list: %w", err)
	}

	summary := &Summary{Total: len(leads)}
	logger.Info("starting campaign run",
		"campaign_id", s.cfg.CampaignID, "leads", strconv.Itoa(len(leads)))

	for i, lead := range leads {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if strings.TrimSpace(lead.Email) == "" {
			logger.Warn("lead has no email address, skipping",
				"campaign_id", s.cfg.CampaignID, "company", lead.Company)
			summary.Skipped++
			continue
		}

		if s.processLead(ctx, i, lead) {
			summary.Sent++
		} else {
			summary.Failed++
		}

		if err := s.pause(ctx, i, len(leads)); err != nil {
			return summary, err
		}
	}

	logger.Info("campaign run completed",
		"campaign_id", s.cfg.CampaignID,
		"sent", strconv.Itoa(summary.Sent),
		"failed", strconv.Itoa(summary.Failed),
		"skipped", strconv.Itoa(summary.Skipped))
	return summary, nil
}

// processLead renders, dispatches, and on confirmed success records the
// send. Returns true only for a confirmed dispatch.
func (s *Scheduler) processLead(ctx context.Context, idx int, lead domain.Lead) bool {
	tid, err := trackid.Generate(s.cfg.CampaignID, recipientID(lead, idx))
	if err != nil {
		logger.Error("tracking id generation failed",
			"campaign_id", s.cfg.CampaignID, "lead_id", lead.ID, "error", err.Error())
		return false
	}

	subject, html, err := s.renderer.Render(lead)
	if err != nil {
		logger.Error("template render failed",
			"campaign_id", s.cfg.CampaignID, "lead_id", lead.ID, "error", err.Error())
		return false
	}
	html = s.injector.InjectTracking(html, tid)

	msg := &domain.OutboundMessage{
		TrackingID: tid,
		CampaignID: s.cfg.CampaignID,
		To:         lead.Email,
		ToName:     lead.Contact,
		Subject:    subject,
		HTML:       html,
	}

	res, err := s.sender.Send(ctx, msg)
	if err != nil || !res.Success {
		reason := "dispatch rejected"
		if err != nil {
			reason = err.Error()
		} else if res.Error != "" {
			reason = res.Error
		}
		logger.Error("send failed",
			"campaign_id", s.cfg.CampaignID, "email", lead.Email, "error", reason)
		return false
	}

	now := time.Now().UTC()
	err = s.store.Mutate(ctx, s.cfg.CampaignID, tid, func(e *domain.RecipientEntry) {
		e.LeadID = lead.ID
		e.Company = lead.Company
		e.Contact = lead.Contact
		e.Email = lead.Email
		e.SentTime = &now
		e.LastActivity = &now
	})
	if err != nil {
		// The message is out; losing the send record is a tracking gap,
		// not a reason to re-send.
		logger.Error("send recorded in dispatch but not in store",
			"campaign_id", s.cfg.CampaignID, "tracking_id", tid, "error", err.Error())
	}

	s.writeAuditCopy(lead, tid, html)
	logger.Info("email sent", "campaign_id", s.cfg.CampaignID, "email", lead.Email, "tracking_id", tid)
	return true
}

// pause applies the two-tier delay policy after recipient idx. No delay
// follows the last recipient. After every BatchSize-th recipient the loop
// additionally takes the longer batch break.
func (s *Scheduler) pause(ctx context.Context, idx, total int) error {
	if idx >= total-1 {
		return nil
	}

	if err := s.sleep(ctx, s.randomDelay(s.cfg.DelayMin, s.cfg.DelayMax)); err != nil {
		return err
	}

	if s.cfg.BatchSize > 0 && (idx+1)%s.cfg.BatchSize == 0 {
		if err := s.sleep(ctx, s.randomDelay(2*s.cfg.DelayMax, 3*s.cfg.DelayMax)); err != nil {
			return err
		}
	}
	return nil
}

// randomDelay draws uniformly from [min, max].
func (s *Scheduler) randomDelay(min, max time.Duration) time.Duration {
	if max < min {
		max = min
	}
	span := int64(max - min)
	if span <= 0 {
		return min
	}
	return min + time.Duration(s.rng.Int63n(span+1))
}

// writeAuditCopy persists the rendered HTML of a confirmed send.
func (s *Scheduler) writeAuditCopy(lead domain.Lead, tid, html string) {
	if s.cfg.AuditDir == "" {
		return
	}
	dir := filepath.Join(s.cfg.AuditDir, s.cfg.CampaignID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("audit directory not created", "dir", dir, "error", err.Error())
		return
	}
	name := fmt.Sprintf("sent_%s_%s.html", sanitizeName(lead.Company), trackid.Nonce(tid))
	if err := os.WriteFile(filepath.Join(dir, name), []byte(html), 0o644); err != nil {
		logger.Warn("audit copy not written", "file", name, "error", err.Error())
	}
}

// recipientID derives the campaign-local recipient identifier: the lead's
// id when it is safe as an identifier segment, the list index otherwise.
func recipientID(lead domain.Lead, idx int) string {
	id := sanitizeName(lead.ID)
	id = strings.ReplaceAll(id, "_", "")
	if id == "" {
		return strconv.Itoa(idx)
	}
	return id
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
