package cluster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// TestCompute_S5 implements scenario S5: three well-separated centers in
// normalized feature space must cause auto-k to select k=3.
func TestCompute_S5(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var features []domain.CommitFeatures

	centers := [][3]float64{{0.05, 0.05, 0.05}, {0.5, 0.5, 0.5}, {0.95, 0.95, 0.95}}

	id := 0

	for _, center := range centers {
		for j := 0; j < 8; j++ {
			jitter := float64(j%3) * 0.01
			features = append(features, domain.CommitFeatures{
				CommitID:  "c" + string(rune('a'+id)),
				Timestamp: base.Add(time.Duration(id) * time.Hour),
				Vector:    [3]float64{center[0] + jitter, center[1] + jitter, center[2] + jitter},
			})
			id++
		}
	}

	report := Compute(features, 42)
	assert.Equal(t, 3, report.K)
	require.Len(t, report.Clusters, 3)

	total := 0
	for _, c := range report.Clusters {
		total += c.Size
	}

	assert.Equal(t, len(features), total)
}

func TestComputeDrift_StableBelowThreshold(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var features []domain.CommitFeatures
	for i := 0; i < 20; i++ {
		features = append(features, domain.CommitFeatures{
			CommitID:  "c" + string(rune('a'+i)),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Vector:    [3]float64{0.5, 0.5, 0.5},
		})
	}

	report := Compute(features, 7)
	for _, d := range report.Drift {
		if d.FirstPct == 0 && d.SecondPct == 0 {
			continue
		}

		// Identical commits share one label in both halves, so drift is 0.
		assert.True(t, d.Stable)
	}
}

func TestLabelFor_Refactoring(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.LabelRefactoring, labelFor(point{0.5, 0.9, 0.1}))
}

func TestLabelFor_Feature(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.LabelFeature, labelFor(point{0.9, 0.5, 0.9}))
}
