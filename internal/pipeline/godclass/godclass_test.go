package godclass

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitxast "github.com/jogendra123/git-xrays/internal/ast"
	"github.com/jogendra123/git-xrays/internal/domain"
)

// TestCompute_S6 implements scenario S6: a class with 20 methods (each
// an if over a two-operator && chain, contributing 1+1+1=3 to WMC, for
// WMC=60), 15 fields, and zero field sharing
// across method pairs (TCC=0) must be flagged as a god class (GCS>0.6).
// A small reference class is included so min-max normalization doesn't
// collapse to zero for a lone class.
func TestCompute_S6(t *testing.T) {
	t.Parallel()

	god := &gitxast.Node{Kind: gitxast.KindClass, Name: "God"}

	for i := 0; i < 15; i++ {
		god.Children = append(god.Children, &gitxast.Node{Kind: gitxast.KindField, Name: "f" + strconv.Itoa(i)})
	}

	for i := 0; i < 20; i++ {
		method := &gitxast.Node{
			Kind:           gitxast.KindMethod,
			Name:           "m" + strconv.Itoa(i),
			AccessedFields: []string{"uniq" + strconv.Itoa(i)},
			Children: []*gitxast.Node{
				{Kind: gitxast.KindIf, Children: []*gitxast.Node{
					{Kind: gitxast.KindBinaryOp, Operator: gitxast.LogicalAnd, Children: []*gitxast.Node{
						{Kind: gitxast.KindBinaryOp, Operator: gitxast.LogicalAnd},
					}},
				}},
			},
		}
		god.Children = append(god.Children, method)
	}

	small := &gitxast.Node{
		Kind: gitxast.KindClass,
		Name: "Small",
		Children: []*gitxast.Node{
			{Kind: gitxast.KindField, Name: "x"},
			{Kind: gitxast.KindMethod, Name: "get_x", AccessedFields: []string{"x"}},
		},
	}

	godFile := &gitxast.Node{Kind: gitxast.KindFile, Children: []*gitxast.Node{god}}
	smallFile := &gitxast.Node{Kind: gitxast.KindFile, Children: []*gitxast.Node{small}}

	report := Compute(map[string]*gitxast.Node{
		"god.py":   godFile,
		"small.py": smallFile,
	})

	require.Len(t, report.Classes, 2)

	var godMetrics domain.GodClassMetrics

	for _, c := range report.Classes {
		if c.Name == "God" {
			godMetrics = c
		}
	}

	assert.Equal(t, 20, godMetrics.MethodCount)
	assert.Equal(t, 60, godMetrics.WMC)
	assert.Equal(t, 15, godMetrics.FieldCount)
	assert.InDelta(t, 0.0, godMetrics.TCC, 1e-9)
	assert.Greater(t, godMetrics.GCS, 0.6)
	assert.True(t, godMetrics.IsGodClass)
}

func TestCohesion_NoQualifyingPairsDefaultsToOne(t *testing.T) {
	t.Parallel()

	methods := []*gitxast.Node{
		{Kind: gitxast.KindMethod, Name: "a"},
		{Kind: gitxast.KindMethod, Name: "b"},
	}

	assert.InDelta(t, 1.0, cohesion(methods), 1e-9)
}
