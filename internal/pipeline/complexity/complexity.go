// Package complexity computes per-function cyclomatic complexity,
// cognitive complexity, and max nesting depth from the language-agnostic
// AST (spec §4.4).
package complexity

import (
	gitxast "github.com/jogendra123/git-xrays/internal/ast"
	"github.com/jogendra123/git-xrays/internal/domain"
)

// Compute walks every top-level function or method in root (a File node
// returned by an ast front-end) and scores it.
func Compute(path string, root *gitxast.Node) domain.ComplexityReport {
	var functions []domain.FunctionComplexity

	collect := func(n *gitxast.Node, qualifier string) {
		for _, fn := range n.TopLevelFunctions() {
			name := fn.Name
			if qualifier != "" {
				name = qualifier + "." + name
			}

			functions = append(functions, scoreFunction(path, name, fn))
		}
	}

	collect(root, "")

	for _, cls := range root.Classes() {
		collect(cls, cls.Name)
	}

	return domain.ComplexityReport{Functions: functions}
}

func scoreFunction(path, name string, fn *gitxast.Node) domain.FunctionComplexity {
	branches, shortCircuits, exceptPaths := countBranches(fn)
	cc := 1 + branches + shortCircuits

	w := &cognitiveWalker{}
	w.visit(fn, 0, "")

	return domain.FunctionComplexity{
		File:        path,
		Name:        name,
		Line:        fn.Line,
		Cyclomatic:  cc,
		Cognitive:   w.score,
		MaxNesting:  w.maxDepth,
		Branches:    branches,
		ExceptPaths: exceptPaths,
		Length:      nodeCount(fn),
	}
}

// countBranches returns (branch constructs, short-circuit operators,
// exception handlers) separately so callers can combine them per spec
// §4.4 ("1 + branch constructs + short-circuit boolean operators minus
// one per expression + ternary"): a chain of N short-circuit operators
// making up one boolean expression (e.g. "a && b && c", two operators)
// contributes N-1, not N, while still reporting a plain branch count.
func countBranches(n *gitxast.Node) (branches, shortCircuits, exceptPaths int) {
	var visit func(c *gitxast.Node)

	visit = func(c *gitxast.Node) {
		switch c.Kind {
		case gitxast.KindIf, gitxast.KindLoop, gitxast.KindCase, gitxast.KindTernary:
			branches++
		case gitxast.KindCatch:
			branches++
			exceptPaths++
		case gitxast.KindBinaryOp:
			if isLogical(c.Operator) {
				shortCircuits += countChainOperators(c) - 1
				visitChainOperands(c, visit)

				return
			}
		}

		for _, child := range c.Children {
			visit(child)
		}
	}

	visit(n)

	return branches, shortCircuits, exceptPaths
}

// countChainOperators counts the logical operators in the maximal chain
// rooted at n: n itself plus every descendant reached only by following
// child operators that are themselves short-circuit operators.
func countChainOperators(n *gitxast.Node) int {
	count := 1

	for _, c := range n.Children {
		if c.Kind == gitxast.KindBinaryOp && isLogical(c.Operator) {
			count += countChainOperators(c)
		}
	}

	return count
}

// visitChainOperands walks every operand of a logical chain rooted at n
// that isn't itself part of the chain, so nested branch constructs and
// independent boolean expressions inside those operands still get
// scored by visit.
func visitChainOperands(n *gitxast.Node, visit func(*gitxast.Node)) {
	for _, c := range n.Children {
		if c.Kind == gitxast.KindBinaryOp && isLogical(c.Operator) {
			visitChainOperands(c, visit)
		} else {
			visit(c)
		}
	}
}

// nodeCount is a size proxy for "length" when front-ends don't carry an
// explicit end-line span: the total count of lowered AST nodes under fn.
func nodeCount(n *gitxast.Node) int {
	count := 0
	n.Walk(func(*gitxast.Node) { count++ })

	if count == 0 {
		return 1
	}

	return count
}

// cognitiveWalker implements a SonarSource-style cognitive complexity
// score: structures that break the linear flow increment a running
// nesting level, and the increment itself grows with nesting depth. A
// run of the same logical operator counts once; switching operator kind
// within one expression counts again.
type cognitiveWalker struct {
	score    int
	maxDepth int
}

func (w *cognitiveWalker) visit(node *gitxast.Node, depth int, lastLogicalOp string) {
	if depth > w.maxDepth {
		w.maxDepth = depth
	}

	for _, child := range node.Children {
		switch child.Kind {
		case gitxast.KindIf:
			if child.IsElseIf {
				w.score++ // else-if: increment, no added nesting
				w.visit(child, depth, lastLogicalOp)
			} else {
				w.score += 1 + depth
				w.visit(child, depth+1, lastLogicalOp)
			}

		case gitxast.KindLoop, gitxast.KindSwitch, gitxast.KindTry, gitxast.KindCatch:
			w.score += 1 + depth
			w.visit(child, depth+1, lastLogicalOp)

		case gitxast.KindCase:
			w.score++
			w.visit(child, depth, lastLogicalOp)

		case gitxast.KindBinaryOp:
			if isLogical(child.Operator) {
				if child.Operator != lastLogicalOp {
					w.score++
				}

				w.visit(child, depth, child.Operator)
			} else {
				w.visit(child, depth, lastLogicalOp)
			}

		case gitxast.KindLambda:
			// A nested closure raises nesting for its own body, but
			// entering it isn't itself a structural increment.
			w.visit(child, depth+1, "")

		default:
			w.visit(child, depth, lastLogicalOp)
		}
	}
}

func isLogical(op string) bool {
	return op == gitxast.LogicalAnd || op == gitxast.LogicalOr
}
