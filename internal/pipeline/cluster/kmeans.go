// Package cluster implements K-Means++ commit clustering with auto-k
// selection via silhouette score, plus label assignment and drift
// (spec §4.5). Kept pure-arithmetic, like the effort engine's ridge
// solver, per the design note against pulling in a numerical library.
package cluster

import (
	"math"
	"math/rand"
)

const (
	maxLloydIterations = 100
	dimensions         = 3
)

type point = [dimensions]float64

// kmeansResult holds one run's assignment and centroids.
type kmeansResult struct {
	assignments []int
	centroids   []point
}

// runKMeans performs K-Means++ seeding followed by Lloyd's iteration,
// deterministic given seed. Iterates until no assignment changes or
// maxLloydIterations is reached.
func runKMeans(data []point, k int, seed int64) kmeansResult {
	rng := rand.New(rand.NewSource(seed))

	centroids := seedPlusPlus(data, k, rng)
	assignments := make([]int, len(data))

	for iter := 0; iter < maxLloydIterations; iter++ {
		changed := false

		for i, p := range data {
			best := nearestCentroid(p, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}

		centroids = updateCentroids(data, assignments, k, centroids)

		if !changed && iter > 0 {
			break
		}
	}

	return kmeansResult{assignments: assignments, centroids: centroids}
}

// seedPlusPlus picks the first centroid uniformly at random and each
// subsequent one with probability proportional to its squared distance
// to the nearest already-chosen centroid.
func seedPlusPlus(data []point, k int, rng *rand.Rand) []point {
	n := len(data)
	centroids := make([]point, 0, k)

	first := data[rng.Intn(n)]
	centroids = append(centroids, first)

	for len(centroids) < k && len(centroids) < n {
		distances := make([]float64, n)

		var total float64

		for i, p := range data {
			d := nearestSquaredDistance(p, centroids)
			distances[i] = d
			total += d
		}

		if total == 0 {
			// All remaining points coincide with a chosen centroid;
			// fall back to uniform choice to still reach k centroids.
			centroids = append(centroids, data[rng.Intn(n)])

			continue
		}

		target := rng.Float64() * total

		var cum float64

		chosen := data[n-1]

		for i, d := range distances {
			cum += d
			if cum >= target {
				chosen = data[i]

				break
			}
		}

		centroids = append(centroids, chosen)
	}

	return centroids
}

func nearestSquaredDistance(p point, centroids []point) float64 {
	best := math.Inf(1)

	for _, c := range centroids {
		d := squaredDistance(p, c)
		if d < best {
			best = d
		}
	}

	return best
}

func nearestCentroid(p point, centroids []point) int {
	best := 0
	bestDist := math.Inf(1)

	for i, c := range centroids {
		d := squaredDistance(p, c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}

	return best
}

func squaredDistance(a, b point) float64 {
	var sum float64

	for i := 0; i < dimensions; i++ {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return sum
}

func updateCentroids(data []point, assignments []int, k int, prev []point) []point {
	sums := make([]point, k)
	counts := make([]int, k)

	for i, p := range data {
		c := assignments[i]
		for d := 0; d < dimensions; d++ {
			sums[c][d] += p[d]
		}

		counts[c]++
	}

	out := make([]point, k)

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			out[c] = prev[c] // empty cluster keeps its previous centroid

			continue
		}

		for d := 0; d < dimensions; d++ {
			out[c][d] = sums[c][d] / float64(counts[c])
		}
	}

	return out
}

// silhouetteScore computes s = mean_i (b_i - a_i)/max(a_i,b_i), where a_i
// is the mean intra-cluster distance and b_i the mean distance to the
// nearest other cluster.
func silhouetteScore(data []point, assignments []int, k int) float64 {
	if k < 2 || len(data) < 2 {
		return -1
	}

	indicesByCluster := make([][]int, k)
	for i := range data {
		c := assignments[i]
		indicesByCluster[c] = append(indicesByCluster[c], i)
	}

	var total float64

	var counted int

	for i, p := range data {
		own := assignments[i]
		if len(indicesByCluster[own]) < 2 {
			continue // singleton clusters contribute no silhouette term
		}

		a := meanDistance(i, p, data, indicesByCluster[own], true)

		b := math.Inf(1)

		for c := 0; c < k; c++ {
			if c == own || len(indicesByCluster[c]) == 0 {
				continue
			}

			d := meanDistance(i, p, data, indicesByCluster[c], false)
			if d < b {
				b = d
			}
		}

		denom := math.Max(a, b)
		if denom == 0 {
			continue
		}

		total += (b - a) / denom
		counted++
	}

	if counted == 0 {
		return -1
	}

	return total / float64(counted)
}

// meanDistance averages the distance from data[selfIdx] to every point in
// the given cluster's index set, excluding selfIdx when excludeSelf is set
// (by index, so duplicate feature vectors aren't mistakenly skipped too).
func meanDistance(selfIdx int, p point, data []point, clusterIndices []int, excludeSelf bool) float64 {
	var sum float64

	n := 0

	for _, idx := range clusterIndices {
		if excludeSelf && idx == selfIdx {
			continue
		}

		sum += math.Sqrt(squaredDistance(p, data[idx]))
		n++
	}

	if n == 0 {
		return 0
	}

	return sum / float64(n)
}
