// Package coupling computes temporal file coupling (co-change Jaccard,
// support, lift) and the derived per-file PAIN composite.
package coupling

import (
	"sort"

	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/numeric"
)

// minSharedCommits is the minimum co-change count for a pair to be
// reported (spec §4.3).
const minSharedCommits = 2

// ComputeCoupling builds the co-change bitmap and returns every
// qualifying pair, canonicalized file_a < file_b, excluding pairs whose
// lift falls strictly below 1.0 (a pair co-changing no more often than
// chance). A pair where one file spans every commit has lift exactly
// 1.0 and still qualifies — it is not independent evidence against
// coupling, just the ceiling case of a file that changes in lockstep
// with everything.
func ComputeCoupling(changes []domain.FileChange) domain.CouplingReport {
	commitsByFile := make(map[string]map[string]struct{})
	allCommits := make(map[string]struct{})

	for _, c := range changes {
		if commitsByFile[c.Path] == nil {
			commitsByFile[c.Path] = make(map[string]struct{})
		}

		commitsByFile[c.Path][c.CommitID] = struct{}{}
		allCommits[c.CommitID] = struct{}{}
	}

	totalCommits := len(allCommits)

	files := make([]string, 0, len(commitsByFile))
	for f := range commitsByFile {
		files = append(files, f)
	}

	sort.Strings(files)

	var pairs []domain.CouplingPair

	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			a, b := files[i], files[j]

			shared := intersectionSize(commitsByFile[a], commitsByFile[b])
			if shared < minSharedCommits {
				continue
			}

			union := len(commitsByFile[a]) + len(commitsByFile[b]) - shared

			jaccard := 0.0
			if union > 0 {
				jaccard = float64(shared) / float64(union)
			}

			support := 0.0
			if totalCommits > 0 {
				support = float64(shared) / float64(totalCommits)
			}

			lift := computeLift(totalCommits, len(commitsByFile[a]), len(commitsByFile[b]), shared)
			if lift < 1.0 {
				continue
			}

			pairs = append(pairs, domain.CouplingPair{
				FileA:         a,
				FileB:         b,
				SharedCommits: shared,
				UnionCommits:  union,
				Jaccard:       jaccard,
				Support:       support,
				Lift:          lift,
			})
		}
	}

	return domain.CouplingReport{Pairs: pairs}
}

func computeLift(totalCommits, countA, countB, shared int) float64 {
	if totalCommits == 0 || countA == 0 || countB == 0 {
		return 0
	}

	pA := float64(countA) / float64(totalCommits)
	pB := float64(countB) / float64(totalCommits)
	pAB := float64(shared) / float64(totalCommits)

	denom := pA * pB
	if denom == 0 {
		return 0
	}

	return pAB / denom
}

func intersectionSize(a, b map[string]struct{}) int {
	count := 0

	for k := range a {
		if _, ok := b[k]; ok {
			count++
		}
	}

	return count
}

// ComputePain derives the per-file PAIN composite from a hotspot report
// and the coupling pairs that involve each file.
func ComputePain(hotspotFiles []domain.FileMetrics, pairs []domain.CouplingPair) domain.PainReport {
	distanceByFile := make(map[string][]float64)

	for _, p := range pairs {
		distanceByFile[p.FileA] = append(distanceByFile[p.FileA], p.Jaccard)
		distanceByFile[p.FileB] = append(distanceByFile[p.FileB], p.Jaccard)
	}

	paths := make([]string, len(hotspotFiles))
	sizes := make([]float64, len(hotspotFiles))
	volatilities := make([]float64, len(hotspotFiles))
	distances := make([]float64, len(hotspotFiles))

	for i, f := range hotspotFiles {
		paths[i] = f.Path
		sizes[i] = float64(f.Churn)
		volatilities[i] = float64(f.Frequency)
		distances[i] = numeric.Mean(distanceByFile[f.Path])
	}

	sizeNorm := numeric.MinMax(sizes)
	volNorm := numeric.MinMax(volatilities)
	distNorm := numeric.MinMax(distances)

	out := make([]domain.FilePain, len(paths))

	for i, p := range paths {
		out[i] = domain.FilePain{
			Path:           p,
			SizeNorm:       sizeNorm[i],
			DistanceNorm:   distNorm[i],
			VolatilityNorm: volNorm[i],
			Pain:           sizeNorm[i] * distNorm[i] * volNorm[i],
		}
	}

	return domain.PainReport{Files: out}
}
