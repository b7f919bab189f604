package anemic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitxast "github.com/jogendra123/git-xrays/internal/ast"
)

func TestCompute_Python_PureDataClassIsAnemic(t *testing.T) {
	t.Parallel()

	src := []byte(`
class Point:
    def __init__(self, x, y):
        self.x = x
        self.y = y

    def get_x(self):
        return self.x

    def get_y(self):
        return self.y
`)

	root, err := gitxast.ParsePython("point.py", src)
	require.NoError(t, err)

	report := Compute("point.py", root, nil)
	require.Len(t, report.Classes, 1)

	cls := report.Classes[0]
	assert.Equal(t, 2, cls.Fields)
	assert.Equal(t, 0, cls.BehaviorMethods)
	assert.True(t, cls.IsAnemic)
	assert.Greater(t, cls.AMS, 0.5)
}

func TestCompute_Python_BehaviorClassIsNotAnemic(t *testing.T) {
	t.Parallel()

	src := []byte(`
class Account:
    def __init__(self, balance):
        self.balance = balance

    def withdraw(self, amount):
        if amount > self.balance:
            raise ValueError("insufficient funds")
        self.balance = self.balance - amount
        return self.balance
`)

	root, err := gitxast.ParsePython("account.py", src)
	require.NoError(t, err)

	report := Compute("account.py", root, nil)
	require.Len(t, report.Classes, 1)

	cls := report.Classes[0]
	assert.Equal(t, 1, cls.BehaviorMethods)
	assert.False(t, cls.IsAnemic)
}

func TestCompute_TouchCountCountsReferencingFiles(t *testing.T) {
	t.Parallel()

	src := []byte(`
class Widget:
    def __init__(self, name):
        self.name = name

    def get_name(self):
        return self.name
`)

	root, err := gitxast.ParsePython("widget.py", src)
	require.NoError(t, err)

	corpus := map[string]string{
		"a.py": "w = Widget('x')",
		"b.py": "from widget import Widget\nuse(Widget)",
		"c.py": "nothing here",
	}

	report := Compute("widget.py", root, corpus)
	require.Len(t, report.Classes, 1)
	assert.Equal(t, 2, report.Classes[0].TouchCount)
}
