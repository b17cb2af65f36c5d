package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for the campaign store.
var (
	// ErrCorruptStore means a campaign file exists but cannot be parsed.
	// The store never repairs or overwrites a corrupt file; callers must
	// surface the failure instead of discarding the inbound event.
	ErrCorruptStore = errors.New("store: corrupt campaign file")

	// ErrInvalidCampaignID means the campaign id failed the allow-list
	// check and was never interpolated into a file path.
	ErrInvalidCampaignID = errors.New("store: invalid campaign id")
)

// CorruptError carries the location of an unparseable campaign file.
// It matches ErrCorruptStore under errors.Is.
type CorruptError struct {
	CampaignID string
	Path       string
	Err        error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("store: corrupt campaign file for %s at %s: %v", e.CampaignID, e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorruptStore }
