// Package hotspot computes per-file change frequency, churn, and a
// combined hotspot score, plus a Pareto breakdown of churn concentration.
package hotspot

import (
	"math"
	"sort"
	"time"

	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/numeric"
)

// halfLifeDays is the temporal-decay half-life for weighted churn and
// weighted frequency (spec §4.1).
const halfLifeDays = 30.0

// reworkWindowDays is the window within which two commits on the same
// path count as "rework" of each other.
const reworkWindowDays = 14.0

type fileAccumulator struct {
	path           string
	frequency      int
	churn          int
	weightedChurn  float64
	weightedFreq   float64
	timestamps     []time.Time
}

// Compute runs the hotspot pipeline over changes, relative to reference
// time asOf (used for temporal decay weighting).
func Compute(changes []domain.FileChange, asOf time.Time) domain.HotspotReport {
	byFile := make(map[string]*fileAccumulator)

	for _, c := range changes {
		acc, ok := byFile[c.Path]
		if !ok {
			acc = &fileAccumulator{path: c.Path}
			byFile[c.Path] = acc
		}

		acc.frequency++
		acc.churn += c.Churn()
		acc.timestamps = append(acc.timestamps, c.Timestamp)

		ageDays := asOf.Sub(c.Timestamp).Hours() / 24.0
		decay := math.Exp2(-ageDays / halfLifeDays)

		acc.weightedChurn += float64(c.Churn()) * decay
		acc.weightedFreq += decay
	}

	paths := make([]string, 0, len(byFile))

	for p, acc := range byFile {
		if acc.churn == 0 {
			continue // zero-churn files excluded from hotspot output
		}

		paths = append(paths, p)
	}

	sort.Strings(paths)

	weightedChurns := make([]float64, len(paths))
	weightedFreqs := make([]float64, len(paths))

	for i, p := range paths {
		weightedChurns[i] = byFile[p].weightedChurn
		weightedFreqs[i] = byFile[p].weightedFreq
	}

	churnNorm := numeric.MinMax(weightedChurns)
	freqNorm := numeric.MinMax(weightedFreqs)

	files := make([]domain.FileMetrics, 0, len(paths))

	for i, p := range paths {
		acc := byFile[p]

		files = append(files, domain.FileMetrics{
			Path:         p,
			Frequency:    acc.frequency,
			Churn:        acc.churn,
			HotspotScore: churnNorm[i] * freqNorm[i],
			ReworkRatio:  reworkRatio(acc),
		})
	}

	return domain.HotspotReport{
		Files:  files,
		Pareto: paretoBuckets(files),
	}
}

// reworkRatio is the fraction of a file's commits that fall within
// reworkWindowDays of another commit touching the same file. Falls back
// to (frequency-1)/frequency when fewer than two timestamps are present
// (timestamps absent/degenerate case).
func reworkRatio(acc *fileAccumulator) float64 {
	n := len(acc.timestamps)
	if n <= 1 {
		return 0
	}

	ts := append([]time.Time(nil), acc.timestamps...)
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

	within := make([]bool, n)

	for i := 0; i < n; i++ {
		if i > 0 && ts[i].Sub(ts[i-1]).Hours()/24.0 <= reworkWindowDays {
			within[i] = true
			within[i-1] = true
		}
	}

	count := 0

	for _, w := range within {
		if w {
			count++
		}
	}

	return float64(count) / float64(n)
}

// paretoThresholds are the cumulative-churn percentiles reported (spec §4.1).
var paretoThresholds = []float64{0.5, 0.8, 0.9}

// paretoBuckets reports, for each threshold, the minimum number of
// highest-churn files whose cumulative churn reaches that threshold of
// total churn.
func paretoBuckets(files []domain.FileMetrics) []domain.ParetoBucket {
	sorted := append([]domain.FileMetrics(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Churn > sorted[j].Churn })

	var total int
	for _, f := range sorted {
		total += f.Churn
	}

	buckets := make([]domain.ParetoBucket, len(paretoThresholds))

	if total == 0 {
		for i, p := range paretoThresholds {
			buckets[i] = domain.ParetoBucket{Percentile: p, FileCount: 0}
		}

		return buckets
	}

	cumulative := 0
	thresholdIdx := 0

	for i, f := range sorted {
		cumulative += f.Churn

		for thresholdIdx < len(paretoThresholds) &&
			float64(cumulative)/float64(total) >= paretoThresholds[thresholdIdx] {
			buckets[thresholdIdx] = domain.ParetoBucket{
				Percentile: paretoThresholds[thresholdIdx],
				FileCount:  i + 1,
			}
			thresholdIdx++
		}
	}

	for ; thresholdIdx < len(paretoThresholds); thresholdIdx++ {
		buckets[thresholdIdx] = domain.ParetoBucket{
			Percentile: paretoThresholds[thresholdIdx],
			FileCount:  len(sorted),
		}
	}

	return buckets
}
