// Package effort models per-file development effort with a closed-form
// ridge regression solved from first principles (spec §4.6): no
// numerical library, Gauss-Jordan elimination with partial pivoting on
// the normal-equations augmented matrix.
package effort

import "math"

var alphaGrid = []float64{0.001, 0.01, 0.1, 1, 10}

// ridgeFit solves beta = (XtX + alpha*I)^-1 * Xt*y for a fixed alpha.
func ridgeFit(x [][]float64, y []float64, alpha float64) []float64 {
	n := len(x[0])

	xtx := multiplyXtX(x)
	for i := 0; i < n; i++ {
		xtx[i][i] += alpha
	}

	xty := multiplyXty(x, y)

	return gaussJordanSolve(xtx, xty)
}

// fitWithAlphaSearch chooses alpha by grid search minimizing leave-one-out
// squared error (5-fold when N is large, spec §4.6), then refits on the
// full data with the winning alpha.
func fitWithAlphaSearch(x [][]float64, y []float64) (beta []float64, bestAlpha float64) {
	bestAlpha = alphaGrid[0]
	bestErr := math.Inf(1)

	for _, alpha := range alphaGrid {
		err := crossValidatedError(x, y, alpha)
		if err < bestErr {
			bestErr = err
			bestAlpha = alpha
		}
	}

	return ridgeFit(x, y, bestAlpha), bestAlpha
}

func crossValidatedError(x [][]float64, y []float64, alpha float64) float64 {
	n := len(x)
	if n <= 20 {
		return leaveOneOutError(x, y, alpha)
	}

	return kFoldError(x, y, alpha, 5)
}

func leaveOneOutError(x [][]float64, y []float64, alpha float64) float64 {
	n := len(x)

	var sumSq float64

	for i := 0; i < n; i++ {
		trainX := excludeRow(x, i)
		trainY := excludeIndex(y, i)

		beta := ridgeFit(trainX, trainY, alpha)
		pred := dot(x[i], beta)
		resid := y[i] - pred
		sumSq += resid * resid
	}

	return sumSq / float64(n)
}

func kFoldError(x [][]float64, y []float64, alpha float64, folds int) float64 {
	n := len(x)

	var sumSq float64

	var count int

	foldSize := n / folds
	if foldSize == 0 {
		foldSize = 1
	}

	for f := 0; f < folds; f++ {
		start := f * foldSize

		end := start + foldSize
		if f == folds-1 {
			end = n
		}

		if start >= end {
			continue
		}

		var trainX [][]float64

		var trainY []float64

		var testX [][]float64

		var testY []float64

		for i := 0; i < n; i++ {
			if i >= start && i < end {
				testX = append(testX, x[i])
				testY = append(testY, y[i])
			} else {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}

		if len(trainX) == 0 || len(testX) == 0 {
			continue
		}

		beta := ridgeFit(trainX, trainY, alpha)

		for i := range testX {
			resid := testY[i] - dot(testX[i], beta)
			sumSq += resid * resid
			count++
		}
	}

	if count == 0 {
		return math.Inf(1)
	}

	return sumSq / float64(count)
}

func excludeRow(x [][]float64, idx int) [][]float64 {
	out := make([][]float64, 0, len(x)-1)

	for i, row := range x {
		if i != idx {
			out = append(out, row)
		}
	}

	return out
}

func excludeIndex(y []float64, idx int) []float64 {
	out := make([]float64, 0, len(y)-1)

	for i, v := range y {
		if i != idx {
			out = append(out, v)
		}
	}

	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}

func multiplyXtX(x [][]float64) [][]float64 {
	n := len(x[0])
	out := make([][]float64, n)

	for i := range out {
		out[i] = make([]float64, n)
	}

	for _, row := range x {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				out[i][j] += row[i] * row[j]
			}
		}
	}

	return out
}

func multiplyXty(x [][]float64, y []float64) []float64 {
	n := len(x[0])
	out := make([]float64, n)

	for r, row := range x {
		for i := 0; i < n; i++ {
			out[i] += row[i] * y[r]
		}
	}

	return out
}

// gaussJordanSolve solves A*beta = b via Gauss-Jordan elimination with
// partial pivoting on the augmented matrix [A|b].
func gaussJordanSolve(a [][]float64, b []float64) []float64 {
	n := len(a)
	aug := make([][]float64, n)

	for i := range a {
		aug[i] = make([]float64, n+1)
		copy(aug[i], a[i])
		aug[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		pivot := col

		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}

		aug[col], aug[pivot] = aug[pivot], aug[col]

		pivotVal := aug[col][col]
		if math.Abs(pivotVal) < 1e-12 {
			continue // singular column; leave row as-is, coefficient keeps the row's right-hand side
		}

		for j := col; j <= n; j++ {
			aug[col][j] /= pivotVal
		}

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}

			factor := aug[r][col]
			for j := col; j <= n; j++ {
				aug[r][j] -= factor * aug[col][j]
			}
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = aug[i][n]
	}

	return out
}
