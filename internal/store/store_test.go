package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach-tracker/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_MissingFileYieldsEmptyRecord(t *testing.T) {
	st := newTestStore(t)

	rec, err := st.Load(context.Background(), "camp1")
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Empty(t, rec)
	assert.False(t, st.Exists("camp1"), "Load must not create the file")
}

func TestMutate_CreatesShellEntry(t *testing.T) {
	st := newTestStore(t)

	err := st.Mutate(context.Background(), "camp1", "camp1_lead1_aaaa1111", func(e *domain.RecipientEntry) {
		e.Opened = true
	})
	require.NoError(t, err)
	assert.True(t, st.Exists("camp1"))

	rec, err := st.Load(context.Background(), "camp1")
	require.NoError(t, err)
	require.Contains(t, rec, "camp1_lead1_aaaa1111")

	entry := rec["camp1_lead1_aaaa1111"]
	assert.True(t, entry.Opened)
	assert.Empty(t, entry.Email, "shell entry has no lead snapshot")
	assert.Nil(t, entry.SentTime)
	assert.NotNil(t, entry.Events)
}

func TestMutate_PreservesOtherEntries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Mutate(ctx, "camp1", "camp1_a_11111111", func(e *domain.RecipientEntry) {
		e.Email = "a@example.com"
	}))
	require.NoError(t, st.Mutate(ctx, "camp1", "camp1_b_22222222", func(e *domain.RecipientEntry) {
		e.Email = "b@example.com"
	}))

	rec, err := st.Load(ctx, "camp1")
	require.NoError(t, err)
	require.Len(t, rec, 2)
	assert.Equal(t, "a@example.com", rec["camp1_a_11111111"].Email)
	assert.Equal(t, "b@example.com", rec["camp1_b_22222222"].Email)
}

func TestMutate_MonotonicFlags(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	tid := "camp1_lead1_aaaa1111"

	require.NoError(t, st.Mutate(ctx, "camp1", tid, func(e *domain.RecipientEntry) {
		e.Opened = true
		e.Events = append(e.Events, domain.EventRecord{Action: domain.ActionOpened})
	}))
	require.NoError(t, st.Mutate(ctx, "camp1", tid, func(e *domain.RecipientEntry) {
		e.Clicked = true
		e.Events = append(e.Events, domain.EventRecord{Action: domain.ActionClicked})
	}))

	rec, err := st.Load(ctx, "camp1")
	require.NoError(t, err)
	entry := rec[tid]
	assert.True(t, entry.Opened, "second mutation must not reset opened")
	assert.True(t, entry.Clicked)
	assert.Len(t, entry.Events, 2)
}

func TestMutate_InvalidIDs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	noop := func(*domain.RecipientEntry) {}

	err := st.Mutate(ctx, "../escape", "camp1_lead1_aaaa1111", noop)
	assert.ErrorIs(t, err, ErrInvalidCampaignID)

	err = st.Mutate(ctx, "camp1", "../etc/passwd", noop)
	assert.Error(t, err)

	entries, globErr := filepath.Glob(filepath.Join(st.Dir(), "*"))
	require.NoError(t, globErr)
	assert.Empty(t, entries, "rejected mutations must not touch the filesystem")
}

func TestLoad_InvalidCampaignID(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Load(context.Background(), "bad/id")
	assert.ErrorIs(t, err, ErrInvalidCampaignID)
}

func TestLoad_CorruptFile(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, os.WriteFile(st.Path("camp1"), []byte("{not json"), 0o644))

	_, err := st.Load(context.Background(), "camp1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptStore)

	var ce *CorruptError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "camp1", ce.CampaignID)
}

func TestMutate_CorruptFileNotOverwritten(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, os.WriteFile(st.Path("camp1"), []byte("{not json"), 0o644))

	err := st.Mutate(context.Background(), "camp1", "camp1_lead1_aaaa1111", func(e *domain.RecipientEntry) {
		e.Opened = true
	})
	assert.ErrorIs(t, err, ErrCorruptStore)

	// The unparseable file must survive for manual recovery.
	data, readErr := os.ReadFile(st.Path("camp1"))
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
}

func TestMutate_ConcurrentDistinctIDs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tid := fmt.Sprintf("camp1_lead%d_aaaa1111", i)
			errs[i] = st.Mutate(ctx, "camp1", tid, func(e *domain.RecipientEntry) {
				e.Opened = true
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "mutation %d", i)
	}

	rec, err := st.Load(ctx, "camp1")
	require.NoError(t, err)
	require.Len(t, rec, n, "no update may be lost under concurrency")
	for i := 0; i < n; i++ {
		tid := fmt.Sprintf("camp1_lead%d_aaaa1111", i)
		require.Contains(t, rec, tid)
		assert.True(t, rec[tid].Opened)
	}
}

func TestMutate_ConcurrentSameID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	tid := "camp1_lead1_aaaa1111"
	const n = 30

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Mutate(ctx, "camp1", tid, func(e *domain.RecipientEntry) {
				e.Events = append(e.Events, domain.EventRecord{Action: domain.ActionOpened})
			})
		}()
	}
	wg.Wait()

	rec, err := st.Load(ctx, "camp1")
	require.NoError(t, err)
	assert.Len(t, rec[tid].Events, n)
}

func TestExists(t *testing.T) {
	st := newTestStore(t)
	assert.False(t, st.Exists("camp1"))
	assert.False(t, st.Exists("../escape"))

	require.NoError(t, st.Mutate(context.Background(), "camp1", "camp1_a_11111111",
		func(*domain.RecipientEntry) {}))
	assert.True(t, st.Exists("camp1"))
}

func TestPath(t *testing.T) {
	st := newTestStore(t)
	assert.Equal(t, filepath.Join(st.Dir(), "campaign_data_camp1.json"), st.Path("camp1"))
}
