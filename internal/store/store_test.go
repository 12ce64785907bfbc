package store

import (
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/coding"
	"github.com/banshee-data/rater-agreement/internal/monitoring"
	"github.com/banshee-data/rater-agreement/internal/testutil"
	"github.com/banshee-data/rater-agreement/internal/timeutil"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	testutil.MuteLogs(t)
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleScores() []agreement.LabelScore {
	return []agreement.LabelScore{
		{Label: "Example Present", Kind: coding.Binary, Method: agreement.MethodKappa, Score: 0.6, Items: 5, Status: agreement.StatusOK},
		{Label: "Clarity", Kind: coding.Ordinal, Method: agreement.MethodWeightedKappa, Weighting: agreement.WeightQuadratic, Score: 0.85, Items: 5, Status: agreement.StatusOK},
		{Label: "Clarity", Kind: coding.Ordinal, Method: agreement.MethodICC3, Score: 0.9, Items: 5, Status: agreement.StatusOK},
		{Label: "Notes", Kind: coding.Categorical, Method: agreement.MethodCrosstab, Score: math.NaN(), Missing: 5, Status: agreement.StatusNotComputable, Reason: "no retained items"},
	}
}

func TestNewStore_MigratesToLatest(t *testing.T) {
	s := setupTestStore(t)

	st, err := s.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(1), st.LatestVersion)
	assert.Equal(t, uint(1), st.CurrentVersion)
	assert.False(t, st.Dirty)
	assert.True(t, st.UpToDate())

	// Re-running up is a no-op.
	require.NoError(t, s.MigrateUp())
}

func TestMigrateDownAndUp(t *testing.T) {
	testutil.MuteLogs(t)
	s, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	v, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)

	require.NoError(t, s.MigrateUp())
	v, _, err = s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	require.NoError(t, s.MigrateDown())
	st, err := s.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(0), st.CurrentVersion)
	assert.False(t, st.UpToDate())

	var n int
	require.NoError(t, s.DB().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='agreement_runs'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMigrateLogger(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	l := &migrateLogger{logf: monitoring.Prefixed("[migrate] ")}
	assert.False(t, l.Verbose())
	l.Printf("applied %d", 1)
	require.NotEmpty(t, logs.Lines())
	assert.Equal(t, "[migrate] applied 1", logs.Lines()[0])

	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()
	for _, line := range logs.Lines() {
		assert.True(t, strings.HasPrefix(line, "[migrate] "), line)
	}
}

func TestInsertRun_GeneratesIDAndTimestamp(t *testing.T) {
	s := setupTestStore(t)

	run := &Run{Rater1: "Sophie", Rater2: "Cat", Input1: "sophie.csv", Input2: "cat.csv",
		OptionsJSON: json.RawMessage(`{"weighting":"quadratic"}`)}
	require.NoError(t, s.InsertRun(run, sampleScores()))
	assert.Len(t, run.RunID, 36)
	assert.NotZero(t, run.CreatedAt)

	got, err := s.GetRun(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "Sophie", got.Rater1)
	assert.Equal(t, "Cat", got.Rater2)
	assert.Equal(t, "sophie.csv", got.Input1)
	assert.Equal(t, run.CreatedAt, got.CreatedAt)
	assert.JSONEq(t, `{"weighting":"quadratic"}`, string(got.OptionsJSON))
	assert.Equal(t, 4, got.ScoreCount)
	assert.Equal(t, run.CreatedAt, got.Created().UnixNano())
}

func TestInsertRun_UsesClock(t *testing.T) {
	s := setupTestStore(t)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s.SetClock(timeutil.NewMockClock(at))

	run := &Run{Rater1: "a", Rater2: "b"}
	require.NoError(t, s.InsertRun(run, nil))
	assert.Equal(t, at.UnixNano(), run.CreatedAt)

	got, err := s.GetRun(run.RunID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.Created()))
}

func TestInsertRun_KeepsGivenID(t *testing.T) {
	s := setupTestStore(t)

	run := &Run{RunID: "fixed", CreatedAt: 42, Rater1: "a", Rater2: "b"}
	require.NoError(t, s.InsertRun(run, nil))
	got, err := s.GetRun("fixed")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.CreatedAt)
	assert.Empty(t, got.OptionsJSON)
	assert.Zero(t, got.ScoreCount)

	// Same ID twice violates the primary key.
	assert.Error(t, s.InsertRun(&Run{RunID: "fixed", Rater1: "a", Rater2: "b"}, nil))
}

func TestScoresForRun_RoundTrip(t *testing.T) {
	s := setupTestStore(t)

	run := &Run{Rater1: "Sophie", Rater2: "Cat"}
	in := sampleScores()
	require.NoError(t, s.InsertRun(run, in))

	out, err := s.ScoresForRun(run.RunID)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].Label, out[i].Label)
		assert.Equal(t, in[i].Kind, out[i].Kind)
		assert.Equal(t, in[i].Method, out[i].Method)
		assert.Equal(t, in[i].Weighting, out[i].Weighting)
		assert.Equal(t, in[i].Status, out[i].Status)
		assert.Equal(t, in[i].Reason, out[i].Reason)
		assert.Equal(t, in[i].Items, out[i].Items)
		assert.Equal(t, in[i].Missing, out[i].Missing)
	}
	assert.InDelta(t, 0.85, out[1].Score, 1e-12)
	assert.True(t, math.IsNaN(out[3].Score), "NULL score reads back as NaN")

	var null int
	require.NoError(t, s.DB().QueryRow(
		`SELECT COUNT(*) FROM agreement_scores WHERE run_id = ? AND score IS NULL`, run.RunID).Scan(&null))
	assert.Equal(t, 1, null)
}

func TestInsertRun_DuplicateScoreRollsBack(t *testing.T) {
	s := setupTestStore(t)

	dup := sampleScores()[:1]
	dup = append(dup, dup[0])
	run := &Run{RunID: "dup", Rater1: "a", Rater2: "b"}
	require.Error(t, s.InsertRun(run, dup))

	_, err := s.GetRun("dup")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.InsertRun(&Run{RunID: "old", CreatedAt: 100, Rater1: "a", Rater2: "b"}, nil))
	require.NoError(t, s.InsertRun(&Run{RunID: "new", CreatedAt: 200, Rater1: "a", Rater2: "b"}, sampleScores()))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, 4, runs[0].ScoreCount)
	assert.Equal(t, "old", runs[1].RunID)
	assert.Equal(t, 0, runs[1].ScoreCount)
}

func TestListRuns_Empty(t *testing.T) {
	s := setupTestStore(t)
	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGetRun_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestDeleteRun(t *testing.T) {
	s := setupTestStore(t)

	run := &Run{Rater1: "a", Rater2: "b"}
	require.NoError(t, s.InsertRun(run, sampleScores()))
	require.NoError(t, s.DeleteRun(run.RunID))

	_, err := s.GetRun(run.RunID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	scores, err := s.ScoresForRun(run.RunID)
	require.NoError(t, err)
	assert.Empty(t, scores)

	assert.ErrorIs(t, s.DeleteRun(run.RunID), ErrRunNotFound)
}

func TestOpenStore_BadPath(t *testing.T) {
	_, err := OpenStore(filepath.Join(t.TempDir(), "missing", "dir", "runs.db"))
	assert.Error(t, err)
}
