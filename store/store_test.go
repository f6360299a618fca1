package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerhq/gleaner/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(":memory:")
	require.NoError(t, s.Open())
	t.Cleanup(func() { s.Close() })
	return s
}

func saveOutcome(t *testing.T, s *Store, url, mode string, success bool) string {
	t.Helper()
	req := &models.ScrapeRequest{URL: url}
	resp := &models.ScrapeResponse{
		Success: success,
		Metadata: models.ScrapeMetadata{
			ScrapeMode: mode,
			DurationMs: 42,
			Timestamp:  time.Now(),
		},
	}
	if success {
		resp.Data = &models.ScrapeData{Content: "content of " + url}
	} else {
		resp.Error = "it broke"
	}
	id, err := s.Save(context.Background(), req, resp)
	require.NoError(t, err)
	return id
}

func TestSaveAndGetByID(t *testing.T) {
	s := newTestStore(t)
	id := saveOutcome(t, s, "https://example.com/a", models.ModeStatic, true)

	stored, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, stored.ScrapeID)
	assert.Equal(t, "https://example.com/a", stored.URL)
	assert.Equal(t, models.ModeStatic, stored.Mode)
	assert.True(t, stored.Success)
	assert.Equal(t, "content of https://example.com/a", stored.Content)
	assert.Equal(t, int64(42), stored.Metadata.DurationMs)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveFailureOutcome(t *testing.T) {
	s := newTestStore(t)
	id := saveOutcome(t, s, "https://example.com/broken", models.ModeDynamic, false)

	stored, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, stored.Success)
	assert.Equal(t, "it broke", stored.Error)
	assert.Empty(t, stored.Content)
}

func TestQueryFilters(t *testing.T) {
	s := newTestStore(t)
	saveOutcome(t, s, "https://a.example.com", models.ModeStatic, true)
	saveOutcome(t, s, "https://a.example.com", models.ModeDynamic, false)
	saveOutcome(t, s, "https://b.example.com", models.ModeStatic, true)

	ctx := context.Background()

	results, total, err := s.Query(ctx, QueryFilter{URL: "https://a.example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, results, 2)

	results, total, err = s.Query(ctx, QueryFilter{Mode: models.ModeDynamic})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "https://a.example.com", results[0].URL)

	success := true
	results, total, err = s.Query(ctx, QueryFilter{Success: &success})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	failure := false
	_, total, err = s.Query(ctx, QueryFilter{Success: &failure})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestQueryPagination(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		saveOutcome(t, s, "https://example.com/page", models.ModeStatic, true)
	}

	results, total, err := s.Query(context.Background(), QueryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, results, 2)

	results, _, err = s.Query(context.Background(), QueryFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQueryTimeRange(t *testing.T) {
	s := newTestStore(t)
	saveOutcome(t, s, "https://example.com", models.ModeStatic, true)

	ctx := context.Background()

	_, total, err := s.Query(ctx, QueryFilter{From: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = s.Query(ctx, QueryFilter{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	saveOutcome(t, s, "https://example.com/1", models.ModeStatic, true)
	saveOutcome(t, s, "https://example.com/2", models.ModeStatic, true)
	saveOutcome(t, s, "https://example.com/3", models.ModeDynamic, false)

	stats, err := s.Statistics(context.Background(),
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byKey := map[string]models.ScrapeStatistic{}
	for _, st := range stats {
		key := st.Mode
		if st.Success {
			key += "/ok"
		} else {
			key += "/fail"
		}
		byKey[key] = st
	}
	assert.Equal(t, 2, byKey["static/ok"].Count)
	assert.Equal(t, 1, byKey["dynamic/fail"].Count)
	assert.InDelta(t, 42.0, byKey["static/ok"].AvgDurationMs, 0.001)
}

func TestStatisticsEmptyRange(t *testing.T) {
	s := newTestStore(t)
	saveOutcome(t, s, "https://example.com", models.ModeStatic, true)

	stats, err := s.Statistics(context.Background(),
		time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stats)
}
