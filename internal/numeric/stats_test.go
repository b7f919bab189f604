package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	t.Parallel()

	got := MinMax([]float64{10, 20, 30})
	assert.InDelta(t, 0.0, got[0], 1e-9)
	assert.InDelta(t, 0.5, got[1], 1e-9)
	assert.InDelta(t, 1.0, got[2], 1e-9)
}

func TestMinMax_ConstantSlice(t *testing.T) {
	t.Parallel()

	got := MinMax([]float64{5, 5, 5})
	for _, v := range got {
		assert.InDelta(t, 0.0, v, 1e-9)
	}
}

func TestMinMax_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, MinMax(nil))
}

func TestEntropy_SingleAuthor(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Entropy([]float64{1.0}), 1e-9)
}

func TestEntropy_TwoEqualShares(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, Entropy([]float64{0.5, 0.5}), 1e-9)
}

func TestGini_EqualDistribution(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Gini([]float64{10, 10, 10, 10}), 1e-9)
}

func TestGini_MaximallyUnequal(t *testing.T) {
	t.Parallel()

	// One author has everything, the rest have nothing: Gini tends to
	// (n-1)/n as n grows for a single dominant share.
	got := Gini([]float64{0, 0, 0, 100})
	assert.Greater(t, got, 0.6)
	assert.LessOrEqual(t, got, 1.0)
}

func TestGini_FewerThanTwo(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Gini([]float64{42}), 1e-9)
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Clamp01(-5), 1e-9)
	assert.InDelta(t, 1.0, Clamp01(5), 1e-9)
	assert.InDelta(t, 0.3, Clamp01(0.3), 1e-9)
}
