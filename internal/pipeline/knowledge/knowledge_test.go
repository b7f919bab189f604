package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// TestCompute_S2 implements scenario S2: x.py touched by Alice (900
// lines) and Bob (100 lines). Expect primary_pct=0.9, is_island=true,
// kdi≈0.531.
func TestCompute_S2(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	changes := []domain.FileChange{
		{Path: "x.py", Author: "alice", Timestamp: now, AddedLines: 900},
		{Path: "x.py", Author: "bob", Timestamp: now, AddedLines: 100},
	}

	report := Compute(changes, now)
	require.Len(t, report.Files, 1)

	f := report.Files[0]
	assert.Equal(t, "alice", f.PrimaryAuthor)
	assert.InDelta(t, 0.9, f.PrimaryPct, 1e-9)
	assert.True(t, f.IsIsland)
	assert.InDelta(t, 0.531, f.KDI, 1e-3)
}

func TestCompute_SingleAuthorKDIIsOne(t *testing.T) {
	t.Parallel()

	now := time.Now()

	changes := []domain.FileChange{
		{Path: "solo.py", Author: "alice", Timestamp: now, AddedLines: 10},
	}

	report := Compute(changes, now)
	require.Len(t, report.Files, 1)
	assert.InDelta(t, 1.0, report.Files[0].KDI, 1e-9)
}

func TestCompute_EqualChurnKDIIsZero(t *testing.T) {
	t.Parallel()

	now := time.Now()

	changes := []domain.FileChange{
		{Path: "shared.py", Author: "alice", Timestamp: now, AddedLines: 50},
		{Path: "shared.py", Author: "bob", Timestamp: now, AddedLines: 50},
	}

	report := Compute(changes, now)
	require.Len(t, report.Files, 1)
	assert.InDelta(t, 0.0, report.Files[0].KDI, 1e-9)
}

func TestCompute_DRIGini(t *testing.T) {
	t.Parallel()

	now := time.Now()

	changes := []domain.FileChange{
		{Path: "a.py", Author: "alice", Timestamp: now, AddedLines: 100},
		{Path: "b.py", Author: "bob", Timestamp: now, AddedLines: 100},
	}

	report := Compute(changes, now)
	assert.InDelta(t, 0.0, report.DRI, 1e-9)
}
