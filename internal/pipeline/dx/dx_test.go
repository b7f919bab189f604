package dx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/domain"
)

func TestCompute_FocusExcludesMixed(t *testing.T) {
	t.Parallel()

	clusters := domain.ClusterReport{
		Clusters: []domain.ClusterSummary{
			{ID: 0, Size: 6, Label: domain.LabelFeature},
			{ID: 1, Size: 2, Label: domain.LabelBugfix},
			{ID: 2, Size: 4, Label: domain.LabelMixed},
		},
	}

	report := Compute(Inputs{Clusters: clusters, Densities: []float64{0.5}, ReworkRatios: []float64{0.2}})
	assert.InDelta(t, 6.0/8.0, report.Focus, 1e-9)
}

func TestCompute_FocusZeroDenominatorDefaultsToHalf(t *testing.T) {
	t.Parallel()

	clusters := domain.ClusterReport{
		Clusters: []domain.ClusterSummary{{ID: 0, Size: 10, Label: domain.LabelMixed}},
	}

	report := Compute(Inputs{Clusters: clusters, Densities: []float64{0.5}, ReworkRatios: []float64{0.2}})
	assert.InDelta(t, 0.5, report.Focus, 1e-9)
}

func TestCompute_DXScoreWithinUnitRange(t *testing.T) {
	t.Parallel()

	clusters := domain.ClusterReport{
		Clusters: []domain.ClusterSummary{
			{ID: 0, Size: 4, Label: domain.LabelFeature},
			{ID: 1, Size: 6, Label: domain.LabelBugfix},
		},
	}

	signals := []FileSignal{
		{Path: "a.go", Complexity: 5, Coordination: 0.2, Knowledge: 0.3, ChangeRate: 4},
		{Path: "b.go", Complexity: 20, Coordination: 0.9, Knowledge: 0.8, ChangeRate: 12},
	}

	report := Compute(Inputs{
		Clusters:     clusters,
		Densities:    []float64{0.3, 0.6},
		ReworkRatios: []float64{0.1, 0.4},
		Files:        signals,
	})

	require.Len(t, report.Files, 2)
	assert.GreaterOrEqual(t, report.DXScore, 0.0)
	assert.LessOrEqual(t, report.DXScore, 1.0)
}
