package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitxast "github.com/jogendra123/git-xrays/internal/ast"
)

func TestCompute_Go_SimpleFunction(t *testing.T) {
	t.Parallel()

	src := []byte(`package sample

func Classify(x int, y int) string {
	if x > 0 && y > 0 {
		return "both"
	} else if x > 0 {
		return "x"
	}
	return "neither"
}
`)

	root, err := gitxast.ParseGo("sample.go", src)
	require.NoError(t, err)

	report := Compute("sample.go", root)
	require.Len(t, report.Functions, 1)

	fn := report.Functions[0]
	assert.Equal(t, "Classify", fn.Name)
	assert.GreaterOrEqual(t, fn.Cyclomatic, 3)
	assert.GreaterOrEqual(t, fn.Cognitive, 2)
	assert.Equal(t, 0, fn.ExceptPaths)
}

func TestCompute_Go_NestedLoopIncreasesNesting(t *testing.T) {
	t.Parallel()

	src := []byte(`package sample

func Sum(rows [][]int) int {
	total := 0
	for _, row := range rows {
		for _, v := range row {
			if v > 0 {
				total += v
			}
		}
	}
	return total
}
`)

	root, err := gitxast.ParseGo("sample.go", src)
	require.NoError(t, err)

	report := Compute("sample.go", root)
	require.Len(t, report.Functions, 1)

	fn := report.Functions[0]
	assert.GreaterOrEqual(t, fn.MaxNesting, 2)
	assert.Greater(t, fn.Cognitive, fn.Cyclomatic-1)
}

func TestCompute_Python_Accessor(t *testing.T) {
	t.Parallel()

	src := []byte(`
class Point:
    def __init__(self, x):
        self.x = x

    def get_x(self):
        return self.x

    def scale(self, factor):
        if factor > 1:
            self.x = self.x * factor
        return self.x
`)

	root, err := gitxast.ParsePython("sample.py", src)
	require.NoError(t, err)

	require.Len(t, root.Classes(), 1)

	cls := root.Classes()[0]

	var scaleFn *gitxast.Node

	for _, fn := range cls.TopLevelFunctions() {
		if fn.Name == "scale" {
			scaleFn = fn
		}
	}

	require.NotNil(t, scaleFn)
	assert.False(t, scaleFn.IsAccessor)

	report := Compute("sample.py", root)
	assert.NotEmpty(t, report.Functions)
}
