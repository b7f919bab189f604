package hotspot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// TestCompute_S1 implements scenario S1 from the spec's testable
// properties: a.py has 10 commits each +10/-5, b.py has a single
// +100/-0 commit, and c.py is never touched.
func TestCompute_S1(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var changes []domain.FileChange

	for i := range 10 {
		changes = append(changes, domain.FileChange{
			CommitID:     "a-commit-" + string(rune('0'+i)),
			Author:       "alice",
			Timestamp:    asOf,
			Path:         "a.py",
			AddedLines:   10,
			DeletedLines: 5,
		})
	}

	changes = append(changes, domain.FileChange{
		CommitID:     "b-commit",
		Author:       "bob",
		Timestamp:    asOf,
		Path:         "b.py",
		AddedLines:   100,
		DeletedLines: 0,
	})

	report := Compute(changes, asOf)

	byPath := make(map[string]domain.FileMetrics)
	for _, f := range report.Files {
		byPath[f.Path] = f
	}

	require.Contains(t, byPath, "a.py")
	require.Contains(t, byPath, "b.py")
	assert.NotContains(t, byPath, "c.py")

	assert.Equal(t, 10, byPath["a.py"].Frequency)
	assert.Equal(t, 150, byPath["a.py"].Churn)
	assert.InDelta(t, 1.0, byPath["a.py"].HotspotScore, 1e-9)
	assert.Less(t, byPath["b.py"].HotspotScore, byPath["a.py"].HotspotScore)
}

func TestCompute_ReworkRatio(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	changes := []domain.FileChange{
		{Path: "x.py", Timestamp: base, AddedLines: 1},
		{Path: "x.py", Timestamp: base.Add(2 * 24 * time.Hour), AddedLines: 1},
		{Path: "x.py", Timestamp: base.Add(90 * 24 * time.Hour), AddedLines: 1},
	}

	report := Compute(changes, base.Add(100*24*time.Hour))
	require.Len(t, report.Files, 1)

	// Commits 0 and 1 are within 14 days of each other; commit 2 is isolated.
	assert.InDelta(t, 2.0/3.0, report.Files[0].ReworkRatio, 1e-9)
}

func TestParetoBuckets_NeverExceedFileCount(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var changes []domain.FileChange
	for i := range 5 {
		changes = append(changes, domain.FileChange{
			Path:       string(rune('a' + i)),
			Timestamp:  base,
			AddedLines: (i + 1) * 10,
		})
	}

	report := Compute(changes, base)

	for _, b := range report.Pareto {
		assert.LessOrEqual(t, b.FileCount, len(report.Files))
	}
}
