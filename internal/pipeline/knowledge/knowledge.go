// Package knowledge computes per-file author-knowledge concentration
// (KDI), island detection, and the repo-level Developer Risk Index (DRI).
package knowledge

import (
	"math"
	"sort"
	"time"

	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/numeric"
)

// halfLifeDays is the temporal-decay half-life for author-churn weighting
// (spec §4.2 — distinct from the hotspot pipeline's 30-day half-life).
const halfLifeDays = 90.0

// islandThreshold is the primary-author share above which a file is
// flagged as a knowledge island.
const islandThreshold = 0.8

// Compute runs the knowledge pipeline over changes, relative to reference
// time asOf.
func Compute(changes []domain.FileChange, asOf time.Time) domain.KnowledgeReport {
	type authorChurn map[string]float64

	byFile := make(map[string]authorChurn)
	rawChurnByFile := make(map[string]map[string]int)
	repoAuthorWeighted := make(map[string]float64)

	for _, c := range changes {
		weight := math.Exp2(-(asOf.Sub(c.Timestamp).Hours() / 24.0) / halfLifeDays)
		churn := float64(c.Churn())

		if byFile[c.Path] == nil {
			byFile[c.Path] = make(authorChurn)
		}

		byFile[c.Path][c.Author] += churn * weight
		repoAuthorWeighted[c.Author] += churn * weight

		if rawChurnByFile[c.Path] == nil {
			rawChurnByFile[c.Path] = make(map[string]int)
		}

		rawChurnByFile[c.Path][c.Author] += c.Churn()
	}

	paths := make([]string, 0, len(byFile))
	for p := range byFile {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	files := make([]domain.FileKnowledge, 0, len(paths))

	for _, path := range paths {
		files = append(files, fileKnowledge(path, byFile[path], rawChurnByFile[path]))
	}

	weightedValues := make([]float64, 0, len(repoAuthorWeighted))
	for _, v := range repoAuthorWeighted {
		weightedValues = append(weightedValues, v)
	}

	return domain.KnowledgeReport{
		Files:                 files,
		DRI:                   numeric.Gini(weightedValues),
		DRIMinAuthorsFor50Pct: minAuthorsFor50Pct(repoAuthorWeighted),
	}
}

func fileKnowledge(path string, weighted map[string]float64, raw map[string]int) domain.FileKnowledge {
	authors := make([]string, 0, len(weighted))
	for a := range weighted {
		authors = append(authors, a)
	}

	sort.Strings(authors)

	var total float64
	for _, v := range weighted {
		total += v
	}

	contributions := make([]domain.AuthorContribution, 0, len(authors))
	probabilities := make([]float64, 0, len(authors))

	var primaryAuthor string

	var primaryShare float64

	for _, a := range authors {
		share := 0.0
		if total > 0 {
			share = weighted[a] / total
		}

		probabilities = append(probabilities, share)

		contributions = append(contributions, domain.AuthorContribution{
			Author:        a,
			Churn:         raw[a],
			WeightedChurn: weighted[a],
		})

		if share > primaryShare {
			primaryShare = share
			primaryAuthor = a
		}
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].WeightedChurn > contributions[j].WeightedChurn
	})

	kdi := 1.0

	if len(authors) >= 2 {
		h := numeric.Entropy(probabilities)
		kdi = 1 - h/math.Log2(float64(len(authors)))
	}

	return domain.FileKnowledge{
		Path:          path,
		Authors:       contributions,
		PrimaryAuthor: primaryAuthor,
		PrimaryPct:    primaryShare,
		KDI:           numeric.Clamp01(kdi),
		IsIsland:      primaryShare > islandThreshold,
	}
}

// minAuthorsFor50Pct is the v1 alternative DRI definition from the Open
// Questions: the minimum number of top authors (by weighted churn) whose
// combined share reaches 50% of total repo churn.
func minAuthorsFor50Pct(weighted map[string]float64) int {
	values := make([]float64, 0, len(weighted))
	for _, v := range weighted {
		values = append(values, v)
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	var total float64
	for _, v := range values {
		total += v
	}

	if total == 0 {
		return 0
	}

	var cumulative float64

	for i, v := range values {
		cumulative += v
		if cumulative/total >= 0.5 {
			return i + 1
		}
	}

	return len(values)
}
