// Package dx composes the hotspot, knowledge, coupling, clustering, and
// complexity pipelines into a single developer-experience overlay
// (spec §4.7).
package dx

import (
	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/numeric"
)

var throughputWeights = map[domain.ClusterLabel]float64{
	domain.LabelFeature:     1.0,
	domain.LabelRefactoring: 0.8,
	domain.LabelBugfix:      0.5,
	domain.LabelMixed:       0.5,
	domain.LabelConfig:      0.3,
}

// FileSignal carries one file's inputs to the cognitive-load score:
// the summed cognitive complexity of its functions, a coordination proxy
// (the number of coupling pairs the file belongs to), knowledge
// concentration (KDI), and a raw change-rate (hotspot frequency).
type FileSignal struct {
	Path         string
	Complexity   float64
	Coordination float64
	Knowledge    float64
	ChangeRate   float64
}

// Inputs bundles the already-computed upstream reports this overlay
// composes, plus per-file signals for the cognitive-load component. The
// overlay does not re-run the upstream pipelines itself; the
// orchestrator runs them once and passes their outputs here, avoiding a
// duplicate git-history walk (spec §4.7 describes the composition, not a
// mandate to re-execute every pipeline from scratch).
type Inputs struct {
	Clusters    domain.ClusterReport
	Densities   []float64
	ReworkRatios []float64
	Files       []FileSignal
}

// Top-level weights combining throughput/feedback/focus/cognitive-load
// into DXScore. Exported so the orchestrator can record them alongside
// a persisted run for later auditing.
const (
	WeightThroughput = 0.3
	WeightFeedback   = 0.25
	WeightFocus      = 0.25
	WeightCognitive  = 0.2

	wComplexity   = 0.35
	wCoordination = 0.25
	wKnowledge    = 0.25
	wChangeRate   = 0.15
)

// Compute derives the five DX scalars and the per-file cognitive-load
// breakdown.
func Compute(in Inputs) domain.DXReport {
	throughput := computeThroughput(in.Clusters)
	feedback := computeFeedback(in.Densities, in.ReworkRatios)
	focus := computeFocus(in.Clusters)

	files := computeCognitiveLoad(in.Files)

	loads := make([]float64, len(files))
	for i, f := range files {
		loads[i] = f.Load
	}

	cognitiveLoad := numeric.Mean(loads)

	dxScore := WeightThroughput*throughput + WeightFeedback*feedback + WeightFocus*focus + WeightCognitive*(1-cognitiveLoad)

	return domain.DXReport{
		Throughput:    throughput,
		Feedback:      feedback,
		Focus:         focus,
		CognitiveLoad: cognitiveLoad,
		DXScore:       dxScore,
		Files:         files,
	}
}

func computeThroughput(clusters domain.ClusterReport) float64 {
	total := 0
	for _, c := range clusters.Clusters {
		total += c.Size
	}

	if total == 0 {
		return 0
	}

	var sum float64

	for _, c := range clusters.Clusters {
		share := float64(c.Size) / float64(total)
		sum += throughputWeights[c.Label] * share
	}

	return numeric.Clamp01(sum)
}

func computeFeedback(densities, reworkRatios []float64) float64 {
	return numeric.Mean(densities) * (1 - numeric.Mean(reworkRatios))
}

func computeFocus(clusters domain.ClusterReport) float64 {
	total := 0
	featureCount := 0

	for _, c := range clusters.Clusters {
		switch c.Label {
		case domain.LabelFeature:
			featureCount += c.Size
			total += c.Size
		case domain.LabelBugfix, domain.LabelConfig, domain.LabelRefactoring:
			total += c.Size
		}
	}

	if total == 0 {
		return 0.5
	}

	return float64(featureCount) / float64(total)
}

func computeCognitiveLoad(signals []FileSignal) []domain.FileCognitiveLoad {
	complexity := make([]float64, len(signals))
	coordination := make([]float64, len(signals))
	knowledge := make([]float64, len(signals))
	changeRate := make([]float64, len(signals))

	for i, s := range signals {
		complexity[i] = s.Complexity
		coordination[i] = s.Coordination
		knowledge[i] = s.Knowledge
		changeRate[i] = s.ChangeRate
	}

	complexityN := numeric.MinMax(complexity)
	coordinationN := numeric.MinMax(coordination)
	knowledgeN := numeric.MinMax(knowledge)
	changeRateN := numeric.MinMax(changeRate)

	out := make([]domain.FileCognitiveLoad, len(signals))

	for i, s := range signals {
		load := wComplexity*complexityN[i] + wCoordination*coordinationN[i] +
			wKnowledge*knowledgeN[i] + wChangeRate*changeRateN[i]

		out[i] = domain.FileCognitiveLoad{
			Path:          s.Path,
			ComplexityN:   complexityN[i],
			CoordinationN: coordinationN[i],
			KnowledgeN:    knowledgeN[i],
			ChangeRateN:   changeRateN[i],
			Load:          load,
		}
	}

	return out
}
