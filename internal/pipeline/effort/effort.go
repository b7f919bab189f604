package effort

import (
	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/numeric"
)

var featureNames = [6]string{
	"churn", "frequency", "pain", "knowledge_concentration", "author_count", "knowledge_pain",
}

// FileInputs carries the raw per-file quantities the effort engine needs
// before normalization: churn and frequency from the hotspot pipeline,
// pain from coupling+PAIN, knowledge concentration (KDI) from the
// knowledge pipeline, author count, and the commit-density/rework
// quantities that make up the training label (spec §4.6).
type FileInputs struct {
	Path                  string
	Churn                 float64
	Frequency             float64
	Pain                  float64
	KnowledgeConcentration float64
	AuthorCount           float64
	CommitDensity         float64
	ReworkRatio           float64
}

const minFilesForRidge = 3

// Compute builds the 6-feature matrix, trains ridge regression with
// alpha chosen by grid search, and returns per-file attribution plus the
// model's R-squared.
func Compute(inputs []FileInputs) domain.EffortReport {
	if len(inputs) < minFilesForRidge {
		return fallback(inputs)
	}

	x := buildFeatureMatrix(inputs)
	y := buildLabels(inputs)

	beta, _ := fitWithAlphaSearch(x, y)

	preds := make([]float64, len(x))
	for i, row := range x {
		preds[i] = dot(row, beta)
	}

	rei := numeric.MinMax(preds)

	files := make([]domain.FileEffort, len(inputs))

	for i, in := range inputs {
		contributions := make(map[string]float64, len(featureNames))
		for f, name := range featureNames {
			contributions[name] = beta[f] * x[i][f]
		}

		files[i] = domain.FileEffort{Path: in.Path, REI: rei[i], Contributions: contributions}
	}

	coefficients := make(map[string]float64, len(featureNames))
	for f, name := range featureNames {
		coefficients[name] = beta[f]
	}

	return domain.EffortReport{
		Files:        files,
		Coefficients: coefficients,
		RSquared:     rSquared(y, preds),
	}
}

// fallback: fewer than 3 files means the regression is underdetermined.
// All coefficients are 1/k, REI is the raw label, R^2 is 0 (spec §4.6).
func fallback(inputs []FileInputs) domain.EffortReport {
	k := len(featureNames)
	equalWeight := 0.0

	if k > 0 {
		equalWeight = 1.0 / float64(k)
	}

	labels := buildLabels(inputs)

	files := make([]domain.FileEffort, len(inputs))

	coefficients := make(map[string]float64, k)
	for _, name := range featureNames {
		coefficients[name] = equalWeight
	}

	for i, in := range inputs {
		files[i] = domain.FileEffort{Path: in.Path, REI: labels[i], Contributions: coefficients}
	}

	return domain.EffortReport{Files: files, Coefficients: coefficients, RSquared: 0}
}

func buildFeatureMatrix(inputs []FileInputs) [][]float64 {
	churn := make([]float64, len(inputs))
	freq := make([]float64, len(inputs))
	pain := make([]float64, len(inputs))
	knowledge := make([]float64, len(inputs))
	authors := make([]float64, len(inputs))

	for i, in := range inputs {
		churn[i] = in.Churn
		freq[i] = in.Frequency
		pain[i] = in.Pain
		knowledge[i] = in.KnowledgeConcentration
		authors[i] = in.AuthorCount
	}

	churnN := numeric.MinMax(churn)
	freqN := numeric.MinMax(freq)
	painN := numeric.MinMax(pain)
	knowledgeN := numeric.MinMax(knowledge)
	authorsN := numeric.MinMax(authors)

	interaction := make([]float64, len(inputs))
	for i := range inputs {
		interaction[i] = knowledgeN[i] * painN[i]
	}

	interactionN := numeric.MinMax(interaction)

	out := make([][]float64, len(inputs))

	for i := range inputs {
		out[i] = []float64{churnN[i], freqN[i], painN[i], knowledgeN[i], authorsN[i], interactionN[i]}
	}

	return out
}

// buildLabels computes the commit-density/rework-ratio blend that serves
// as the ridge regression's training target.
func buildLabels(inputs []FileInputs) []float64 {
	densities := make([]float64, len(inputs))
	reworks := make([]float64, len(inputs))

	for i, in := range inputs {
		densities[i] = in.CommitDensity
		reworks[i] = in.ReworkRatio
	}

	densityN := numeric.MinMax(densities)
	reworkN := numeric.MinMax(reworks)

	out := make([]float64, len(inputs))
	for i := range inputs {
		out[i] = 0.5*densityN[i] + 0.5*reworkN[i]
	}

	return out
}

func rSquared(y, preds []float64) float64 {
	mean := numeric.Mean(y)

	var ssRes, ssTot float64

	for i := range y {
		resid := y[i] - preds[i]
		ssRes += resid * resid

		dev := y[i] - mean
		ssTot += dev * dev
	}

	if ssTot == 0 {
		return 0
	}

	return 1 - ssRes/ssTot
}
