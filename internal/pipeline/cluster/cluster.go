package cluster

import (
	"sort"
	"time"

	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/numeric"
)

const (
	minK         = 2
	maxK         = 8
	driftStableThreshold = 0.05
)

// Feature thresholds for label assignment (spec §4.5), expressed against
// min-max normalized centroid coordinates.
const (
	highChurn       = 0.6
	highFileCount   = 0.6
	lowFileCount    = 0.3
	lowAddRatio     = 0.4
	highAddRatio    = 0.7
)

// BuildFeatures converts raw per-commit [file_count, total_churn,
// add_ratio] vectors into the normalized CommitFeatures the clusterer
// consumes (spec §3, §4.5: "min-max normalized across the commit set").
func BuildFeatures(commitIDs []string, timestamps []time.Time, fileCounts, churns, addRatios []float64) []domain.CommitFeatures {
	fcNorm := numeric.MinMax(fileCounts)
	churnNorm := numeric.MinMax(churns)
	arNorm := numeric.MinMax(addRatios)

	out := make([]domain.CommitFeatures, len(commitIDs))

	for i := range commitIDs {
		out[i] = domain.CommitFeatures{
			CommitID:  commitIDs[i],
			Timestamp: timestamps[i],
			Vector:    [3]float64{fcNorm[i], churnNorm[i], arNorm[i]},
		}
	}

	return out
}

// Compute runs K-Means++ with auto-k selection via silhouette score, then
// labels clusters and computes drift across the window's two halves.
func Compute(features []domain.CommitFeatures, seed int64) domain.ClusterReport {
	if len(features) == 0 {
		return domain.ClusterReport{}
	}

	data := make([]point, len(features))
	for i, f := range features {
		data[i] = f.Vector
	}

	bestK := minK
	bestScore := -2.0
	bestResult := runKMeans(data, minK, seed)

	upperK := maxK
	if upperK > len(data) {
		upperK = len(data)
	}

	for k := minK; k <= upperK; k++ {
		result := runKMeans(data, k, seed)
		score := silhouetteScore(data, result.assignments, k)

		if score > bestScore {
			bestScore = score
			bestK = k
			bestResult = result
		}
	}

	summaries := summarize(bestResult, bestK)

	drift := computeDrift(features, bestResult.assignments, summaries)

	return domain.ClusterReport{K: bestK, Clusters: summaries, Drift: drift}
}

func summarize(result kmeansResult, k int) []domain.ClusterSummary {
	sizes := make([]int, k)
	for _, c := range result.assignments {
		sizes[c]++
	}

	out := make([]domain.ClusterSummary, k)

	for c := 0; c < k; c++ {
		out[c] = domain.ClusterSummary{
			ID:       c,
			Size:     sizes[c],
			Centroid: result.centroids[c],
			Label:    labelFor(result.centroids[c]),
		}
	}

	return out
}

// labelFor assigns a cluster label from its centroid position in
// normalized [file_count, churn, add_ratio] feature space (spec §4.5).
func labelFor(centroid point) domain.ClusterLabel {
	fileCount, churn, addRatio := centroid[0], centroid[1], centroid[2]

	switch {
	case addRatio < lowAddRatio && churn >= highChurn:
		return domain.LabelRefactoring
	case addRatio > highAddRatio && fileCount >= highFileCount:
		return domain.LabelFeature
	case fileCount <= lowFileCount && addRatio >= lowAddRatio && addRatio <= highAddRatio && churn < highChurn:
		return domain.LabelBugfix
	case churn < highChurn && fileCount <= lowFileCount:
		return domain.LabelConfig
	default:
		return domain.LabelMixed
	}
}

// computeDrift splits the analyzed window at its midpoint and computes
// each label's percentage-point share change between halves.
func computeDrift(features []domain.CommitFeatures, assignments []int, summaries []domain.ClusterSummary) []domain.ClusterDrift {
	ordered := make([]int, len(features))
	for i := range ordered {
		ordered[i] = i
	}

	sort.Slice(ordered, func(i, j int) bool {
		return features[ordered[i]].Timestamp.Before(features[ordered[j]].Timestamp)
	})

	mid := len(ordered) / 2
	firstHalf := ordered[:mid]
	secondHalf := ordered[mid:]

	labelOf := make(map[int]domain.ClusterLabel, len(summaries))
	for _, s := range summaries {
		labelOf[s.ID] = s.Label
	}

	firstShare := labelShares(firstHalf, assignments, labelOf)
	secondShare := labelShares(secondHalf, assignments, labelOf)

	labels := []domain.ClusterLabel{
		domain.LabelFeature, domain.LabelBugfix, domain.LabelRefactoring,
		domain.LabelConfig, domain.LabelMixed,
	}

	out := make([]domain.ClusterDrift, 0, len(labels))

	for _, l := range labels {
		first := firstShare[l]
		second := secondShare[l]
		drift := second - first

		out = append(out, domain.ClusterDrift{
			Label:     l,
			FirstPct:  first,
			SecondPct: second,
			Drift:     drift,
			Stable:    absFloat(drift) < driftStableThreshold,
		})
	}

	return out
}

func labelShares(indices []int, assignments []int, labelOf map[int]domain.ClusterLabel) map[domain.ClusterLabel]float64 {
	out := make(map[domain.ClusterLabel]float64)
	if len(indices) == 0 {
		return out
	}

	counts := make(map[domain.ClusterLabel]int)
	for _, idx := range indices {
		counts[labelOf[assignments[idx]]]++
	}

	for l, c := range counts {
		out[l] = float64(c) / float64(len(indices))
	}

	return out
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
