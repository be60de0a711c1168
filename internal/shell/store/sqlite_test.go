package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func recordTestSubmission(t *testing.T, store Store, application, deployment string, createdAt time.Time) *Submission {
	t.Helper()
	sub := NewSubmission(application, "kie-test", deployment, StatusSubmitted)
	sub.Objects = []string{"Deployment/" + deployment, "Service/" + deployment}
	sub.CreatedAt = createdAt
	require.NoError(t, store.RecordSubmission(context.Background(), sub))
	return sub
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestNewSQLiteStore_Reopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")

	first, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	recordTestSubmission(t, first, "acme", "acme-kieserver", time.Now())
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer second.Close()

	subs, err := second.ListSubmissions(context.Background(), DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	recordTestSubmission(t, store, "acme", "acme-mysql", time.Now())
	subs, err := store.ListSubmissions(context.Background(), DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

// =============================================================================
// Submission Tests
// =============================================================================

func TestRecordSubmission_GetSubmission(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sub := NewSubmission("acme", "kie-test", "acme-mysql", StatusFailed)
	sub.Error = "cluster create Route acme-kieserver: denied"
	require.NoError(t, store.RecordSubmission(ctx, sub))

	got, err := store.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.Application, got.Application)
	assert.Equal(t, sub.Namespace, got.Namespace)
	assert.Equal(t, sub.Deployment, got.Deployment)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, sub.Error, got.Error)
	assert.Empty(t, got.Objects)
	assert.WithinDuration(t, sub.CreatedAt, got.CreatedAt, time.Microsecond)
}

func TestRecordSubmission_DuplicateID(t *testing.T) {
	store := setupTestStore(t)
	sub := recordTestSubmission(t, store, "acme", "acme-kieserver", time.Now())

	err := store.RecordSubmission(context.Background(), sub)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestGetSubmission_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetSubmission(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "missing", storeErr.ID)
}

func TestListSubmissions_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	recordTestSubmission(t, store, "acme", "old", base)
	recordTestSubmission(t, store, "acme", "newest", base.Add(2*time.Second))
	recordTestSubmission(t, store, "acme", "middle", base.Add(time.Second+100*time.Millisecond))

	subs, err := store.ListSubmissions(context.Background(), DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "newest", subs[0].Deployment)
	assert.Equal(t, "middle", subs[1].Deployment)
	assert.Equal(t, "old", subs[2].Deployment)
	assert.Equal(t, []string{"Deployment/newest", "Service/newest"}, subs[0].Objects)
}

func TestListSubmissions_Pagination(t *testing.T) {
	store := setupTestStore(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		recordTestSubmission(t, store, "acme", "d", base.Add(time.Duration(i)*time.Second))
	}

	page, err := store.ListSubmissions(context.Background(), ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestListSubmissionsByApplication(t *testing.T) {
	store := setupTestStore(t)
	recordTestSubmission(t, store, "acme", "acme-kieserver", time.Now())
	recordTestSubmission(t, store, "other", "other-kieserver", time.Now())

	subs, err := store.ListSubmissionsByApplication(context.Background(), "acme", DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "acme-kieserver", subs[0].Deployment)
}

// =============================================================================
// Options Tests
// =============================================================================

func TestListOptions_Normalize(t *testing.T) {
	assert.Equal(t, ListOptions{Limit: 100}, ListOptions{}.Normalize())
	assert.Equal(t, ListOptions{Limit: 1000}, ListOptions{Limit: 5000, Offset: -1}.Normalize())
	assert.Equal(t, ListOptions{Limit: 10, Offset: 20}, ListOptions{Limit: 10, Offset: 20}.Normalize())
}
