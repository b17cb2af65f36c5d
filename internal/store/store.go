// Package store persists per-campaign engagement records as JSON files,
// one file per campaign, safe under concurrent callers in this process and
// under a second process sharing the same data directory.
//
// Every write goes through Mutate, which serializes load-modify-save per
// campaign behind an in-process mutex plus a filesystem advisory lock. The
// tracking server and the send loop run as separate processes against the
// same directory, so the in-process mutex alone is not enough.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/ignite/outreach-tracker/internal/domain"
	"github.com/ignite/outreach-tracker/internal/trackid"
)

const (
	filePrefix    = "campaign_data_"
	fileSuffix    = ".json"
	lockRetryWait = 25 * time.Millisecond
)

// Store is a file-backed campaign record store rooted at one directory.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-campaign, lazily created
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating data directory: %w", err)
	}
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *Store) Dir() string { return s.dir }

// Path returns the campaign file path for a validated campaign id.
func (s *Store) Path(campaignID string) string {
	return filepath.Join(s.dir, filePrefix+campaignID+fileSuffix)
}

// Exists reports whether a campaign file has been created. A campaign with
// no file is distinct from a campaign with an empty record; /stats uses
// this to answer 404 for the former.
func (s *Store) Exists(campaignID string) bool {
	if !trackid.ValidCampaignID(campaignID) {
		return false
	}
	_, err := os.Stat(s.Path(campaignID))
	return err == nil
}

// Load reads the current record for a campaign. A missing file yields an
// empty record, never an error; an unparseable file yields a CorruptError.
func (s *Store) Load(ctx context.Context, campaignID string) (domain.CampaignRecord, error) {
	if !trackid.ValidCampaignID(campaignID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCampaignID, campaignID)
	}

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	fl, err := s.acquireFileLock(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	defer fl.Unlock()

	return s.read(campaignID)
}

// Mutate atomically applies fn to the RecipientEntry for trackingID inside
// the campaign's record, creating a shell entry if none exists yet (an
// event can arrive before the send loop seeded the record). The whole
// load-modify-save cycle runs under the campaign's locks; the file is
// rewritten via temp-and-rename so a failed write never truncates history.
func (s *Store) Mutate(ctx context.Context, campaignID, trackingID string, fn func(*domain.RecipientEntry)) error {
	if !trackid.ValidCampaignID(campaignID) {
		return fmt.Errorf("%w: %q", ErrInvalidCampaignID, campaignID)
	}
	if !trackid.Valid(trackingID) {
		return fmt.Errorf("store: invalid tracking id %q", trackingID)
	}

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	fl, err := s.acquireFileLock(ctx, campaignID)
	if err != nil {
		return err
	}
	defer fl.Unlock()

	rec, err := s.read(campaignID)
	if err != nil {
		return err
	}

	entry, ok := rec[trackingID]
	if !ok {
		entry = &domain.RecipientEntry{Events: []domain.EventRecord{}}
		rec[trackingID] = entry
	}
	fn(entry)

	return s.write(campaignID, rec)
}

// read loads the record from disk. Callers hold the campaign locks.
func (s *Store) read(campaignID string) (domain.CampaignRecord, error) {
	path := s.Path(campaignID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.CampaignRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", path, err)
	}

	var rec domain.CampaignRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &CorruptError{CampaignID: campaignID, Path: path, Err: err}
	}
	if rec == nil {
		rec = domain.CampaignRecord{}
	}
	return rec, nil
}

// write replaces the campaign file with the full record. The record is
// written to a temp file in the same directory and renamed into place, so
// readers only ever see a complete file. Callers hold the campaign locks.
func (s *Store) write(campaignID string, rec domain.CampaignRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encoding record for %s: %w", campaignID, err)
	}

	tmp, err := os.CreateTemp(s.dir, filePrefix+campaignID+".tmp-")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: setting file mode: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path(campaignID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: replacing campaign file: %w", err)
	}
	return nil
}

// acquireFileLock takes the cross-process advisory lock for one campaign.
// The lock lives in a sibling .lock file so the data file itself can be
// atomically renamed while locked.
func (s *Store) acquireFileLock(ctx context.Context, campaignID string) (*flock.Flock, error) {
	fl := flock.New(s.Path(campaignID) + ".lock")
	ok, err := fl.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return nil, fmt.Errorf("store: acquiring file lock for %s: %w", campaignID, err)
	}
	if !ok {
		return nil, fmt.Errorf("store: file lock for %s not acquired", campaignID)
	}
	return fl, nil
}

func (s *Store) campaignLock(campaignID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[campaignID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[campaignID] = lock
	}
	return lock
}
