package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSnapshot() *service.AnalysisSnapshot {
	return &service.AnalysisSnapshot{
		BusinessDescription: "автошкола в Уфе",
		RawQueriesCount:     250,
		FilteredCount:       50,
		UsedAI:              true,
		Result: &model.AnalysisResult{
			TrashQueries: []model.AnalyzedQuery{
				{Query: "автошкола бесплатно", Category: model.CategoryTrash, Reason: "freebie", Metrics: model.QueryMetricRecord{Cost: 90.45}},
			},
			SuggestedMinusWords: []model.MinusWordSuggestion{
				{Word: "бесплатно", QueriesAffected: 1, PotentialSavings: 90.45},
			},
			TotalQueries: 200,
			Summary:      model.Summary{TotalCost: 5000, WastedCost: 90.45, PotentialSavings: 90.45},
		},
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	snapshot := sampleSnapshot()
	require.NoError(t, store.SaveAnalysis(ctx, snapshot))
	// Save assigns identity and timestamp.
	assert.NotEmpty(t, snapshot.ID)
	assert.False(t, snapshot.CreatedAt.IsZero())

	loaded, err := store.GetAnalysis(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, loaded.ID)
	assert.Equal(t, "автошкола в Уфе", loaded.BusinessDescription)
	assert.True(t, loaded.UsedAI)
	assert.Equal(t, 250, loaded.RawQueriesCount)
	require.NotNil(t, loaded.Result)
	assert.Equal(t, 200, loaded.Result.TotalQueries)
	assert.Equal(t, 90.45, loaded.Result.Summary.WastedCost)
	require.Len(t, loaded.Result.SuggestedMinusWords, 1)
	assert.Equal(t, "бесплатно", loaded.Result.SuggestedMinusWords[0].Word)
}

func TestGetAnalysisNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetAnalysis(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListAnalysesNewestFirst(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snapshot := sampleSnapshot()
		snapshot.ID = string(rune('a' + i))
		snapshot.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.SaveAnalysis(ctx, snapshot))
	}

	all, err := store.ListAnalyses(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	limited, err := store.ListAnalyses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
}

func TestSaveAnalysisIsAppendOnly(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	snapshot := sampleSnapshot()
	require.NoError(t, store.SaveAnalysis(ctx, snapshot))

	// Re-saving the same ID is an insert conflict, never an update.
	dup := sampleSnapshot()
	dup.ID = snapshot.ID
	err := store.SaveAnalysis(ctx, dup)
	require.Error(t, err)
}

func TestSaveAnalysisRejectsNilResult(t *testing.T) {
	store := newTestStorage(t)

	err := store.SaveAnalysis(context.Background(), &service.AnalysisSnapshot{})
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}
