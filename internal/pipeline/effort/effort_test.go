package effort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRidgeFit_S4 implements scenario S4: an identity design matrix with
// negligible ridge penalty should recover y almost exactly.
func TestRidgeFit_S4(t *testing.T) {
	t.Parallel()

	x := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	y := []float64{2, 4, 8}

	beta := ridgeFit(x, y, 1e-6)

	require.Len(t, beta, 3)
	assert.InDelta(t, 2.0, beta[0], 1e-3)
	assert.InDelta(t, 4.0, beta[1], 1e-3)
	assert.InDelta(t, 8.0, beta[2], 1e-3)

	preds := make([]float64, len(x))
	for i, row := range x {
		preds[i] = dot(row, beta)
	}

	assert.InDelta(t, 1.0, rSquared(y, preds), 1e-6)
}

func TestCompute_FallbackBelowThreeFiles(t *testing.T) {
	t.Parallel()

	inputs := []FileInputs{
		{Path: "a.go", Churn: 10, Frequency: 2, Pain: 0.5, KnowledgeConcentration: 0.3, AuthorCount: 1, CommitDensity: 0.2, ReworkRatio: 0.1},
		{Path: "b.go", Churn: 20, Frequency: 4, Pain: 0.7, KnowledgeConcentration: 0.5, AuthorCount: 2, CommitDensity: 0.4, ReworkRatio: 0.3},
	}

	report := Compute(inputs)
	require.Len(t, report.Files, 2)
	assert.Equal(t, 0.0, report.RSquared)

	for _, c := range report.Coefficients {
		assert.InDelta(t, 1.0/6.0, c, 1e-9)
	}
}

func TestCompute_RidgePathProducesREIInUnitRange(t *testing.T) {
	t.Parallel()

	inputs := []FileInputs{
		{Path: "a.go", Churn: 10, Frequency: 2, Pain: 0.5, KnowledgeConcentration: 0.3, AuthorCount: 1, CommitDensity: 0.2, ReworkRatio: 0.1},
		{Path: "b.go", Churn: 20, Frequency: 4, Pain: 0.7, KnowledgeConcentration: 0.5, AuthorCount: 2, CommitDensity: 0.4, ReworkRatio: 0.3},
		{Path: "c.go", Churn: 100, Frequency: 20, Pain: 0.9, KnowledgeConcentration: 0.9, AuthorCount: 5, CommitDensity: 0.9, ReworkRatio: 0.8},
		{Path: "d.go", Churn: 5, Frequency: 1, Pain: 0.1, KnowledgeConcentration: 0.1, AuthorCount: 1, CommitDensity: 0.05, ReworkRatio: 0.05},
	}

	report := Compute(inputs)
	require.Len(t, report.Files, 4)

	for _, f := range report.Files {
		assert.GreaterOrEqual(t, f.REI, 0.0)
		assert.LessOrEqual(t, f.REI, 1.0)
	}
}
