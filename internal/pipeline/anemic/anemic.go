// Package anemic flags classes whose data and behavior have split apart:
// all state, no logic (spec §4.4).
package anemic

import (
	"strings"

	gitxast "github.com/jogendra123/git-xrays/internal/ast"
	"github.com/jogendra123/git-xrays/internal/domain"
)

// Compute scores every class in root. sourceCorpus maps every other
// source file's path to its raw text, used for the touch-count heuristic
// (a textual reference/import scan, spec §4.4).
func Compute(path string, root *gitxast.Node, sourceCorpus map[string]string) domain.AnemicReport {
	var out []domain.ClassMetrics

	for _, cls := range root.Classes() {
		out = append(out, scoreClass(path, cls, sourceCorpus))
	}

	return domain.AnemicReport{Classes: out}
}

func scoreClass(path string, cls *gitxast.Node, sourceCorpus map[string]string) domain.ClassMetrics {
	fields := 0
	nonDunderNonProperty := 0
	behaviorMethods := 0
	methodsWithLogic := 0

	for _, c := range cls.Children {
		if c.Kind == gitxast.KindField {
			fields++
		}
	}

	for _, m := range cls.TopLevelFunctions() {
		if m.IsAccessor {
			continue
		}

		nonDunderNonProperty++

		if hasControlFlow(m) {
			methodsWithLogic++
			behaviorMethods++
		}
	}

	dbsi := 0.0
	if fields+behaviorMethods > 0 {
		dbsi = float64(fields) / float64(fields+behaviorMethods)
	}

	// A class with no non-dunder, non-accessor methods has no logic at
	// all, so it carries full orchestration pressure.
	orchestration := 1.0
	if nonDunderNonProperty > 0 {
		orchestration = 1 - float64(methodsWithLogic)/float64(nonDunderNonProperty)
	}

	ams := dbsi * orchestration

	return domain.ClassMetrics{
		File:                  path,
		Name:                  cls.Name,
		Fields:                fields,
		BehaviorMethods:       behaviorMethods,
		DBSI:                  dbsi,
		OrchestrationPressure: orchestration,
		AMS:                   ams,
		IsAnemic:              ams > 0.5,
		TouchCount:            touchCount(path, cls.Name, sourceCorpus),
	}
}

// hasControlFlow reports whether a method body is "non-trivial": it
// contains a conditional, loop, exception handler, or resource block.
func hasControlFlow(m *gitxast.Node) bool {
	found := false

	m.Walk(func(c *gitxast.Node) {
		switch c.Kind {
		case gitxast.KindIf, gitxast.KindLoop, gitxast.KindSwitch, gitxast.KindTry, gitxast.KindCatch:
			found = true
		}
	})

	return found
}

// touchCount counts the other source files that textually reference the
// class name, a heuristic stand-in for a real import graph (spec §4.4).
func touchCount(path, className string, sourceCorpus map[string]string) int {
	count := 0

	for p, text := range sourceCorpus {
		if p != path && strings.Contains(text, className) {
			count++
		}
	}

	return count
}
