// Package godclass flags classes doing too much: high method/field
// count, high weighted complexity, low cohesion (spec §4.4).
package godclass

import (
	gitxast "github.com/jogendra123/git-xrays/internal/ast"
	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/numeric"
)

const (
	wMethodCount = 0.3
	wWMC         = 0.3
	wFieldCount  = 0.2
	wCohesion    = 0.2
	flagThreshold = 0.6
)

// Compute scores every class found across every parsed file in a run.
// Normalization is min-max across this file set (spec §4.4), so every
// class in the run is scored together, not file by file.
func Compute(files map[string]*gitxast.Node) domain.GodClassReport {
	type raw struct {
		file    string
		name    string
		methods int
		fields  int
		wmc     int
		tcc     float64
	}

	var rows []raw

	for path, root := range files {
		for _, cls := range root.Classes() {
			methods := cls.TopLevelFunctions()

			fields := 0
			for _, c := range cls.Children {
				if c.Kind == gitxast.KindField {
					fields++
				}
			}

			wmc := 0
			for _, m := range methods {
				wmc += cyclomaticOf(m)
			}

			rows = append(rows, raw{
				file:    path,
				name:    cls.Name,
				methods: len(methods),
				fields:  fields,
				wmc:     wmc,
				tcc:     cohesion(methods),
			})
		}
	}

	if len(rows) == 0 {
		return domain.GodClassReport{}
	}

	methodCounts := make([]float64, len(rows))
	wmcs := make([]float64, len(rows))
	fieldCounts := make([]float64, len(rows))

	for i, r := range rows {
		methodCounts[i] = float64(r.methods)
		wmcs[i] = float64(r.wmc)
		fieldCounts[i] = float64(r.fields)
	}

	methodNorm := numeric.MinMax(methodCounts)
	wmcNorm := numeric.MinMax(wmcs)
	fieldNorm := numeric.MinMax(fieldCounts)

	out := make([]domain.GodClassMetrics, len(rows))

	for i, r := range rows {
		gcs := wMethodCount*methodNorm[i] + wWMC*wmcNorm[i] + wFieldCount*fieldNorm[i] + wCohesion*(1-r.tcc)

		out[i] = domain.GodClassMetrics{
			File:        r.file,
			Name:        r.name,
			MethodCount: r.methods,
			FieldCount:  r.fields,
			WMC:         r.wmc,
			TCC:         r.tcc,
			GCS:         gcs,
			IsGodClass:  gcs > flagThreshold,
		}
	}

	return domain.GodClassReport{Classes: out}
}

// cyclomaticOf mirrors the complexity package's branch-counting rule
// without importing it, to keep the two analyzers independently testable
// against the same AST shape.
func cyclomaticOf(fn *gitxast.Node) int {
	count := 1

	var visit func(c *gitxast.Node, parentLogical bool)

	visit = func(c *gitxast.Node, parentLogical bool) {
		logical := c.Kind == gitxast.KindBinaryOp &&
			(c.Operator == gitxast.LogicalAnd || c.Operator == gitxast.LogicalOr)

		switch c.Kind {
		case gitxast.KindIf, gitxast.KindLoop, gitxast.KindCase, gitxast.KindCatch, gitxast.KindTernary:
			count++
		case gitxast.KindBinaryOp:
			// A chain of N logical operators adds N-1: only an operator
			// directly under another logical operator counts.
			if logical && parentLogical {
				count++
			}
		}

		for _, child := range c.Children {
			visit(child, logical)
		}
	}

	visit(fn, false)

	return count
}

// cohesion computes TCC: the fraction of method pairs that share at
// least one accessed field. Pairs where neither method accesses any
// field are excluded from the denominator; if no pair qualifies, TCC is
// defined as 1.0 (spec §4.4).
func cohesion(methods []*gitxast.Node) float64 {
	n := len(methods)
	if n < 2 {
		return 1.0
	}

	qualifying := 0
	sharing := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a := fieldSet(methods[i])
			b := fieldSet(methods[j])

			if len(a) == 0 && len(b) == 0 {
				continue
			}

			qualifying++

			if sharesAny(a, b) {
				sharing++
			}
		}
	}

	if qualifying == 0 {
		return 1.0
	}

	return float64(sharing) / float64(qualifying)
}

func fieldSet(m *gitxast.Node) map[string]struct{} {
	out := make(map[string]struct{}, len(m.AccessedFields))
	for _, f := range m.AccessedFields {
		out[f] = struct{}{}
	}

	return out
}

func sharesAny(a, b map[string]struct{}) bool {
	for f := range a {
		if _, ok := b[f]; ok {
			return true
		}
	}

	return false
}
