// Package tracking serves the inbound engagement endpoints: the open pixel,
// the click redirect, and campaign stats. Handlers are invoked concurrently
// by the HTTP server; all shared state lives behind the store's locks.
package tracking

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/ignite/outreach-tracker/internal/domain"
	"github.com/ignite/outreach-tracker/internal/pkg/httputil"
	"github.com/ignite/outreach-tracker/internal/pkg/logger"
	"github.com/ignite/outreach-tracker/internal/stats"
	"github.com/ignite/outreach-tracker/internal/store"
	"github.com/ignite/outreach-tracker/internal/trackid"
)

// Handler exposes the tracking HTTP surface over a campaign store.
type Handler struct {
	store           *store.Store
	defaultRedirect string
}

// NewHandler creates a tracking handler. defaultRedirect is where click
// requests land when they carry a missing or malformed url parameter.
func NewHandler(st *store.Store, defaultRedirect string) *Handler {
	return &Handler{store: st, defaultRedirect: defaultRedirect}
}

// Routes builds the router. Stats is CORS-open so the reporting dashboard
// can call it from the browser.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleIndex)
	r.Get("/health", h.HandleHealth)
	r.Get("/track/pixel/{trackingID}", h.HandleOpen)
	r.Get("/track/click/{trackingID}", h.HandleClick)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
		}))
		r.Get("/stats/{campaignID}", h.HandleStats)
	})
	return r
}

// HandleOpen records an email open and serves the tracking pixel. Once the
// identifier validates, the pixel is always returned: a recipient's mail
// client must never see a broken image because our disk had a bad day. A
// failed merge is logged loudly instead.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trackingID")
	if !trackid.Valid(id) {
		logger.Warn("rejected open with invalid tracking id", "tracking_id", id)
		httputil.BadRequest(w, "invalid tracking id")
		return
	}

	clientIP := realIP(r)
	ua := r.UserAgent()
	now := time.Now().UTC()

	err := h.store.Mutate(r.Context(), trackid.CampaignID(id), id, func(e *domain.RecipientEntry) {
		e.Opened = true
		e.LastActivity = &now
		e.Events = append(e.Events, domain.EventRecord{
			Action:    domain.ActionOpened,
			Timestamp: now,
			SourceIP:  clientIP,
			UserAgent: ua,
		})
	})
	if err != nil {
		logger.Error("open event not recorded", "tracking_id", id, "error", err.Error())
	} else {
		logger.Info("email opened", "tracking_id", id, "ip", clientIP, "user_agent", ua)
	}

	h.servePixel(w)
}

// HandleClick records a link click and redirects. An invalid or missing
// target URL falls back to the configured default rather than stranding
// the recipient on an error page.
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trackingID")
	if !trackid.Valid(id) {
		logger.Warn("rejected click with invalid tracking id", "tracking_id", id)
		httputil.BadRequest(w, "invalid tracking id")
		return
	}

	target := r.URL.Query().Get("url")
	if !validRedirectURL(target) {
		if target != "" {
			logger.Warn("invalid url in click request", "tracking_id", id, "url", target)
		}
		target = h.defaultRedirect
	}

	clientIP := realIP(r)
	ua := r.UserAgent()
	now := time.Now().UTC()

	err := h.store.Mutate(r.Context(), trackid.CampaignID(id), id, func(e *domain.RecipientEntry) {
		e.Clicked = true
		e.LastActivity = &now
		e.Events = append(e.Events, domain.EventRecord{
			Action:    domain.ActionClicked,
			Timestamp: now,
			SourceIP:  clientIP,
			UserAgent: ua,
			TargetURL: target,
		})
	})
	if err != nil {
		logger.Error("click event not recorded", "tracking_id", id, "error", err.Error())
	} else {
		logger.Info("link clicked", "tracking_id", id, "url", target, "ip", clientIP)
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// HandleStats returns aggregate engagement for one campaign.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	if !trackid.ValidCampaignID(campaignID) {
		httputil.BadRequest(w, "invalid campaign id")
		return
	}
	if !h.store.Exists(campaignID) {
		httputil.NotFound(w, "campaign not found")
		return
	}

	rec, err := h.store.Load(r.Context(), campaignID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stats.Compute(campaignID, rec))
}

// HandleHealth is the liveness probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleIndex describes the service for anyone poking at the root.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "running",
		"server": "outreach tracking server",
		"available_endpoints": []string{
			"/health - server health check",
			"/track/pixel/{trackingId} - track email opens",
			"/track/click/{trackingId}?url=... - track link clicks",
			"/stats/{campaignId} - campaign statistics",
		},
	})
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelPNG)
}

// validRedirectURL accepts only absolute http/https URLs with a host.
func validRedirectURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
