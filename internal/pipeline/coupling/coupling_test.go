package coupling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// TestComputeCoupling_S3 implements scenario S3: five commits touch both
// m.py and n.py, plus one commit touches only m.py. Expect shared=5,
// union=6, jaccard≈0.833.
func TestComputeCoupling_S3(t *testing.T) {
	t.Parallel()

	now := time.Now()

	var changes []domain.FileChange

	for i := range 5 {
		commit := "shared-" + string(rune('a'+i))
		changes = append(changes,
			domain.FileChange{CommitID: commit, Path: "m.py", Timestamp: now, AddedLines: 1},
			domain.FileChange{CommitID: commit, Path: "n.py", Timestamp: now, AddedLines: 1},
		)
	}

	changes = append(changes, domain.FileChange{CommitID: "solo", Path: "m.py", Timestamp: now, AddedLines: 1})

	report := ComputeCoupling(changes)
	require.Len(t, report.Pairs, 1)

	pair := report.Pairs[0]
	assert.Equal(t, "m.py", pair.FileA)
	assert.Equal(t, "n.py", pair.FileB)
	assert.Equal(t, 5, pair.SharedCommits)
	assert.Equal(t, 6, pair.UnionCommits)
	assert.InDelta(t, 5.0/6.0, pair.Jaccard, 1e-9)
}

func TestComputeCoupling_Canonical(t *testing.T) {
	t.Parallel()

	now := time.Now()

	var changes []domain.FileChange

	for i := range 3 {
		commit := "c" + string(rune('a'+i))
		changes = append(changes,
			domain.FileChange{CommitID: commit, Path: "z.py", Timestamp: now, AddedLines: 1},
			domain.FileChange{CommitID: commit, Path: "a.py", Timestamp: now, AddedLines: 1},
		)
	}

	report := ComputeCoupling(changes)
	for _, p := range report.Pairs {
		assert.Less(t, p.FileA, p.FileB)
		assert.NotEqual(t, p.FileA, p.FileB)
	}
}

func TestComputePain_IsolatedFileHasZeroDistance(t *testing.T) {
	t.Parallel()

	hotspotFiles := []domain.FileMetrics{
		{Path: "iso.py", Churn: 100, Frequency: 5},
	}

	report := ComputePain(hotspotFiles, nil)
	require.Len(t, report.Files, 1)
	assert.InDelta(t, 0.0, report.Files[0].DistanceNorm, 1e-9)
}
