// Package trackid implements the tracking identifier scheme embedded in
// outbound pixel and click URLs.
//
// An identifier is three underscore-joined segments:
//
//	{campaignID}_{recipientID}_{nonce}
//
// The campaign segment routes an inbound event to its store file, the
// recipient segment ties the event back to a lead, and the nonce keeps the
// identifier globally unique even when the same lead is targeted twice.
// Because the identifier doubles as a file-lookup key, every segment is
// restricted to alphanumerics; anything else is rejected before it can
// reach the filesystem.
package trackid

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Separator joins the three identifier segments. Segments must never
// contain it, enforced at generation time.
const Separator = "_"

var (
	idPattern      = regexp.MustCompile(`^[a-zA-Z0-9]+_[a-zA-Z0-9]+_[a-zA-Z0-9]+$`)
	segmentPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Generate builds a tracking identifier for one recipient of one campaign.
// The nonce is 8 hex characters of a random UUID, which keeps collisions
// negligible for campaigns up to ~10^5 recipients. Returns an error if either
// segment is empty or contains a character outside [a-zA-Z0-9].
func Generate(campaignID, recipientID string) (string, error) {
	if !segmentPattern.MatchString(campaignID) {
		return "", fmt.Errorf("trackid: invalid campaign id %q", campaignID)
	}
	if !segmentPattern.MatchString(recipientID) {
		return "", fmt.Errorf("trackid: invalid recipient id %q", recipientID)
	}
	u := uuid.New()
	nonce := fmt.Sprintf("%x", u[:4])
	return campaignID + Separator + recipientID + Separator + nonce, nil
}

// CampaignID extracts the campaign segment from an identifier without
// validating the rest. O(1) in identifier length up to the first separator;
// callers on the ingestion path must run Valid first.
func CampaignID(id string) string {
	if idx := strings.Index(id, Separator); idx >= 0 {
		return id[:idx]
	}
	return id
}

// RecipientID extracts the recipient segment, or "" if the identifier is
// not well formed.
func RecipientID(id string) string {
	parts := strings.Split(id, Separator)
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}

// Nonce extracts the random segment, or "" if the identifier is not well
// formed.
func Nonce(id string) string {
	parts := strings.Split(id, Separator)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}

// Valid reports whether id matches the structural pattern: three non-empty
// alphanumeric segments separated by exactly two underscores. This is the
// primary defense against path traversal via the identifier.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// ValidCampaignID reports whether a bare campaign id is safe to use as a
// store-file key.
func ValidCampaignID(campaignID string) bool {
	return segmentPattern.MatchString(campaignID)
}

// NewCampaignID derives a campaign id from the run start time, unique per
// campaign run at one-second resolution.
func NewCampaignID(t time.Time) string {
	return t.Format("20060102150405")
}
