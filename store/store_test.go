package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/voice-analysis/analysis"
	"github.com/maastricht-university/voice-analysis/stats"
)

func testReport(id string, at time.Time, f0 float64) *analysis.Report {
	g, m, ok := stats.Label(f0)
	return &analysis.Report{
		ID:        id,
		AudioPath: "/data/" + id + ".wav",
		Stats: analysis.Result{
			NumSyllables: 12,
			F0Mean:       f0,
			F0Std:        18,
		},
		GenderMood:  stats.Verdict{Gender: g, Mood: m, Confidence: 0.35, Rounds: 5, OK: ok},
		PPPScore:    81.5,
		GeneratedAt: at,
	}
}

func TestSaveGet(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	r := testReport("a1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), 120)
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, r.Stats, got.Stats)
	assert.Equal(t, r.GenderMood, got.GenderMood)
	assert.Equal(t, r.PPPScore, got.PPPScore)
	assert.True(t, r.GeneratedAt.Equal(got.GeneratedAt))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, testReport("old", base, 120)))
	require.NoError(t, s.Save(ctx, testReport("new", base.Add(time.Hour), 210)))
	require.NoError(t, s.Save(ctx, testReport("unlabelled", base.Add(30*time.Minute), 300)))

	all, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "female", all[0].Gender)
	assert.Equal(t, "reading", all[0].Mood)
	assert.Equal(t, "unlabelled", all[1].ID)
	assert.Empty(t, all[1].Gender)
	assert.Equal(t, "old", all[2].ID)
	assert.WithinDuration(t, base, all[2].CreatedAt, time.Millisecond)

	top, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "new", top[0].ID)
}

func TestSaveReplaces(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nested", "reports.sqlite"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	r := testReport("same", time.Now().UTC(), 120)
	require.NoError(t, s.Save(ctx, r))
	r.PPPScore = 42
	require.NoError(t, s.Save(ctx, r))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 42.0, all[0].PPPScore)
}

func TestSaveNonFinite(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	r := testReport("nan", time.Now().UTC(), 120)
	r.PPPScore = math.NaN()
	require.Error(t, s.Save(ctx, r))

	_, err = s.Get(ctx, "nan")
	assert.ErrorIs(t, err, ErrNotFound)
}
