package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()

	s, err := Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func sampleRun(id string) domain.Run {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	return domain.Run{
		RunID:              id,
		RepoPath:           "/repo/sample",
		WindowDays:         30,
		StartedAt:          now,
		EndedAt:            now.Add(24 * time.Hour),
		TotalFiles:         2,
		TotalCommits:       10,
		TotalAuthors:       3,
		DRI:                0.4,
		EffortCoefficients: map[string]float64{"churn": 0.5},
		DXWeights:          map[string]float64{"throughput": 0.3},
	}
}

// TestSave_RoundTrip implements invariant #9: persisting then reading a
// run back returns equal scalar fields and child rows.
func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	run := sampleRun("run-1")
	bundle := Bundle{
		Hotspot: domain.HotspotReport{
			Files: []domain.FileMetrics{
				{Path: "a.go", Frequency: 5, Churn: 100, HotspotScore: 0.9, ReworkRatio: 0.2},
			},
		},
	}

	require.NoError(t, s.Save(run, bundle))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, run.RepoPath, got.RepoPath)
	assert.Equal(t, run.TotalFiles, got.TotalFiles)
	assert.InDelta(t, run.DRI, got.DRI, 1e-9)
	assert.Equal(t, run.EffortCoefficients, got.EffortCoefficients)
}

// TestCompare_S7 implements scenario S7: a file's hotspot score dropping
// from 0.9 to 0.3 between two runs must be classified improved with
// delta -0.6.
func TestCompare_S7(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	runA := sampleRun("run-a")
	runB := sampleRun("run-b")

	bundleA := Bundle{Hotspot: domain.HotspotReport{Files: []domain.FileMetrics{
		{Path: "a.go", Frequency: 5, Churn: 100, HotspotScore: 0.9, ReworkRatio: 0.2},
	}}}
	bundleB := Bundle{Hotspot: domain.HotspotReport{Files: []domain.FileMetrics{
		{Path: "a.go", Frequency: 5, Churn: 40, HotspotScore: 0.3, ReworkRatio: 0.2},
	}}}

	require.NoError(t, s.Save(runA, bundleA))
	require.NoError(t, s.Save(runB, bundleB))

	comparison, err := s.Compare("run-a", "run-b")
	require.NoError(t, err)

	var hotspotTable TableComparison

	for _, tbl := range comparison.Tables {
		if tbl.Table == "hotspot_files" {
			hotspotTable = tbl
		}
	}

	require.Len(t, hotspotTable.Rows, 1)
	row := hotspotTable.Rows[0]
	assert.Equal(t, StatusImproved, row.Status)
	assert.InDelta(t, -0.6, row.Delta, 1e-9)
}

// TestCompare_SameRunAllUnchanged implements invariant #10: comparing a
// run against itself yields no deltas.
func TestCompare_SameRunAllUnchanged(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	run := sampleRun("run-solo")
	bundle := Bundle{
		Hotspot: domain.HotspotReport{Files: []domain.FileMetrics{
			{Path: "a.go", Frequency: 5, Churn: 100, HotspotScore: 0.9, ReworkRatio: 0.2},
		}},
		Knowledge: domain.KnowledgeReport{Files: []domain.FileKnowledge{
			{Path: "a.go", PrimaryAuthor: "alice", PrimaryPct: 0.9, KDI: 0.5, IsIsland: true},
		}},
	}

	require.NoError(t, s.Save(run, bundle))

	comparison, err := s.Compare("run-solo", "run-solo")
	require.NoError(t, err)

	for _, tbl := range comparison.Tables {
		for _, row := range tbl.Rows {
			assert.Equal(t, StatusUnchanged, row.Status, "table %s key %s", tbl.Table, row.Key)
		}
	}
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	_, err := s.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns_OrderedNewestFirst(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	older := sampleRun("run-older")
	older.StartedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := sampleRun("run-newer")
	newer.StartedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(older, Bundle{}))
	require.NoError(t, s.Save(newer, Bundle{}))

	runs, err := s.ListRuns("/repo/sample")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-newer", runs[0].RunID)
}
