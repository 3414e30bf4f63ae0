package queue

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersistence(t *testing.T) (*GormPersistence, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.db")
	p, err := NewSQLitePersistence(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, path
}

func TestGormPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPersistence(t)

	m := NewMutation("POST", "/api/speech", speechPayload("Hello world", "nova", 1.0))
	require.NoError(t, p.Save(ctx, m))

	got, err := p.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "/api/speech", got.URL)
	assert.Equal(t, StatusPending, got.Status)
	assert.JSONEq(t, string(m.Payload), string(got.Payload))
}

func TestGormPersistence_GetMissing(t *testing.T) {
	p, _ := newTestPersistence(t)
	_, err := p.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, ErrNotFound.Is(err))
}

func TestGormPersistence_ListFIFO(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPersistence(t)

	base := time.Now().Truncate(time.Second)
	var ids []string
	for i := 0; i < 3; i++ {
		m := NewMutation("POST", "/api/speech", speechPayload("x", "nova", 1.0))
		m.EnqueuedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, p.Save(ctx, m))
		ids = append(ids, m.ID)
	}

	all, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, m := range all {
		assert.Equal(t, ids[i], m.ID)
	}
}

func TestGormPersistence_SaveUpdates(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPersistence(t)

	m := NewMutation("POST", "/api/speech", speechPayload("x", "nova", 1.0))
	require.NoError(t, p.Save(ctx, m))

	m.Status = StatusFailed
	m.Attempts = 3
	require.NoError(t, p.Save(ctx, m))

	got, err := p.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, 3, got.Attempts)

	all, err := p.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "save of an existing id must not duplicate the row")
}

func TestGormPersistence_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPersistence(t)

	first := NewMutation("POST", "/api/speech", speechPayload("one", "nova", 1.0))
	second := NewMutation("POST", "/api/speech", speechPayload("two", "nova", 1.0))
	require.NoError(t, p.Save(ctx, first))
	require.NoError(t, p.Save(ctx, second))

	require.NoError(t, p.Delete(ctx, first.ID))
	_, err := p.Get(ctx, first.ID)
	assert.True(t, ErrNotFound.Is(err))

	require.NoError(t, p.Clear(ctx))
	all, err := p.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGormPersistence_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "queue.db")

	p, err := NewSQLitePersistence(path)
	require.NoError(t, err)
	m := NewMutation("POST", "/api/speech", speechPayload("Hello world", "nova", 1.0))
	require.NoError(t, p.Save(ctx, m))
	require.NoError(t, p.Close())

	reopened, err := NewSQLitePersistence(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}
