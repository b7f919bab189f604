// Package orchestrator assembles the nine metric pipelines into one
// analysis run: it resolves the commit window, fans out the pipelines
// that only need the change stream, threads their outputs into the
// pipelines that depend on them, and returns the result for the caller
// to persist. Grounded on
// the teacher's cmd/codefang/commands/run.go staged-execution shape
// (progress logging, span-per-stage, sentinel errors) adapted from a
// CLI-analyzer registry to a fixed nine-stage dependency graph.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	gitxast "github.com/jogendra123/git-xrays/internal/ast"
	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/gitadapter"
	"github.com/jogendra123/git-xrays/internal/observability"
	"github.com/jogendra123/git-xrays/internal/pipeline/anemic"
	"github.com/jogendra123/git-xrays/internal/pipeline/cluster"
	"github.com/jogendra123/git-xrays/internal/pipeline/complexity"
	"github.com/jogendra123/git-xrays/internal/pipeline/coupling"
	"github.com/jogendra123/git-xrays/internal/pipeline/dx"
	"github.com/jogendra123/git-xrays/internal/pipeline/effort"
	"github.com/jogendra123/git-xrays/internal/pipeline/godclass"
	"github.com/jogendra123/git-xrays/internal/pipeline/hotspot"
	"github.com/jogendra123/git-xrays/internal/pipeline/knowledge"
	"github.com/jogendra123/git-xrays/internal/store"
)

const hoursPerDay = 24

// Options controls window resolution and analysis tuning for one run.
type Options struct {
	RepoPath   string
	WindowDays int
	AtRef      string
	FromRef    string
	ToRef      string
	KMeansSeed int64
}

// Result bundles the persisted run header with its full pipeline output.
type Result struct {
	Run    domain.Run
	Bundle store.Bundle
}

// Run executes all nine pipelines over the resolved window and returns
// the assembled result. It does not persist; call store.Save on the
// result to do that, letting callers decide whether a dry run is wanted.
func Run(ctx context.Context, repo gitadapter.Repository, src gitadapter.Source, opts Options, tracer trace.Tracer, logger *slog.Logger, meter *observability.Meter) (Result, error) {
	ctx, span := tracer.Start(ctx, "gitxrays.analyze")
	defer span.End()

	startedAt := time.Now()

	since, until, err := resolveWindow(ctx, repo, opts)
	if err != nil {
		return Result{}, fmt.Errorf("%w: resolve window: %w", domain.ErrInput, err)
	}

	span.SetAttributes(
		attribute.String("gitxrays.repo_path", opts.RepoPath),
		attribute.Int("gitxrays.window_days", opts.WindowDays),
	)

	logger.InfoContext(ctx, "window resolved", "since", since, "until", until)

	changes, err := repo.FileChanges(ctx, &since, &until)
	if err != nil {
		return Result{}, fmt.Errorf("%w: fetch changes: %w", domain.ErrAdapter, err)
	}

	logger.InfoContext(ctx, "changes fetched", "count", len(changes))

	ref := sourceRef(opts)

	paths, err := src.ListSourceFiles(ctx, ref)
	if err != nil {
		return Result{}, fmt.Errorf("%w: list source files: %w", domain.ErrAdapter, err)
	}

	astFiles, corpus, err := parseSourceTree(ctx, src, ref, paths)
	if err != nil {
		return Result{}, fmt.Errorf("%w: parse source tree: %w", domain.ErrAdapter, err)
	}

	var (
		hotspotReport   domain.HotspotReport
		knowledgeReport domain.KnowledgeReport
		couplingReport  domain.CouplingReport
		anemicReport    domain.AnemicReport
		complexityReport domain.ComplexityReport
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(stage(gctx, meter, "hotspot", func() error {
		hotspotReport = hotspot.Compute(changes, until)
		return nil
	}))
	group.Go(stage(gctx, meter, "knowledge", func() error {
		knowledgeReport = knowledge.Compute(changes, until)
		return nil
	}))
	group.Go(stage(gctx, meter, "coupling", func() error {
		couplingReport = coupling.ComputeCoupling(changes)
		return nil
	}))
	group.Go(stage(gctx, meter, "complexity", func() error {
		complexityReport = computeComplexity(astFiles)
		return nil
	}))
	group.Go(stage(gctx, meter, "anemic", func() error {
		anemicReport = computeAnemic(astFiles, corpus)
		return nil
	}))

	if err := group.Wait(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrAnalysis, err)
	}

	painReport := coupling.ComputePain(hotspotReport.Files, couplingReport.Pairs)
	godClassReport := godclass.Compute(astFiles)

	clusterReport := computeClusters(changes, opts.KMeansSeed)

	effortReport := computeEffort(hotspotReport, knowledgeReport, painReport)

	dxReport := computeDX(clusterReport, hotspotReport, knowledgeReport, complexityReport, couplingReport)

	authors := countDistinctAuthors(changes)

	dri := knowledgeReport.DRI

	run := domain.Run{
		RepoPath:           opts.RepoPath,
		WindowDays:         opts.WindowDays,
		StartedAt:          startedAt,
		EndedAt:            time.Now(),
		TotalFiles:         len(paths),
		TotalCommits:       countDistinctCommits(changes),
		TotalAuthors:       authors,
		DRI:                dri,
		DXScore:            &dxReport.DXScore,
		EffortCoefficients: effortReport.Coefficients,
		DXWeights: map[string]float64{
			"throughput":     dx.WeightThroughput,
			"feedback":       dx.WeightFeedback,
			"focus":          dx.WeightFocus,
			"cognitive_load": dx.WeightCognitive,
		},
	}

	bundle := store.Bundle{
		Hotspot:    hotspotReport,
		Knowledge:  knowledgeReport,
		Coupling:   couplingReport,
		Pain:       painReport,
		Anemic:     anemicReport,
		GodClass:   godClassReport,
		Complexity: complexityReport,
		Cluster:    clusterReport,
		Effort:     effortReport,
		DX:         dxReport,
	}

	meter.RecordRun(ctx, true)

	return Result{Run: run, Bundle: bundle}, nil
}

func stage(ctx context.Context, meter *observability.Meter, name string, fn func() error) func() error {
	return func() error {
		start := time.Now()
		err := fn()
		meter.RecordStage(ctx, name, time.Since(start).Seconds(), err == nil)

		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}

		return nil
	}
}

func sourceRef(opts Options) string {
	if opts.AtRef != "" {
		return opts.AtRef
	}

	return opts.ToRef
}

func resolveWindow(ctx context.Context, repo gitadapter.Repository, opts Options) (since, until time.Time, err error) {
	switch {
	case opts.AtRef != "":
		until, err = repo.ResolveRef(ctx, opts.AtRef)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	case opts.FromRef != "" && opts.ToRef != "":
		since, err = repo.ResolveRef(ctx, opts.FromRef)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		until, err = repo.ResolveRef(ctx, opts.ToRef)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		return since, until, nil
	default:
		until, err = repo.LastCommitDate(ctx)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if opts.WindowDays > 0 {
		since = until.Add(-time.Duration(opts.WindowDays) * hoursPerDay * time.Hour)
	} else {
		since, err = repo.FirstCommitDate(ctx)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	return since, until, nil
}

func parseSourceTree(ctx context.Context, src gitadapter.Source, ref string, paths []string) (map[string]*gitxast.Node, map[string]string, error) {
	astFiles := make(map[string]*gitxast.Node, len(paths))
	corpus := make(map[string]string, len(paths))

	for _, path := range paths {
		raw, err := src.ReadFile(ctx, path, ref)
		if err != nil {
			continue // unreadable blob (submodule gitlink, symlink target, etc.): skip, not fatal.
		}

		corpus[path] = string(raw)

		var (
			node   *gitxast.Node
			parseErr error
		)

		switch {
		case hasSuffix(path, ".go"):
			node, parseErr = gitxast.ParseGo(path, raw)
		case hasSuffix(path, ".py"):
			node, parseErr = gitxast.ParsePython(path, raw)
		default:
			continue
		}

		if parseErr != nil {
			continue // unparseable source (syntax error mid-history): skip, not fatal.
		}

		astFiles[path] = node
	}

	return astFiles, corpus, nil
}

func hasSuffix(path, suffix string) bool {
	if len(path) < len(suffix) {
		return false
	}

	return path[len(path)-len(suffix):] == suffix
}

func computeComplexity(astFiles map[string]*gitxast.Node) domain.ComplexityReport {
	var report domain.ComplexityReport

	for _, path := range sortedKeys(astFiles) {
		fileReport := complexity.Compute(path, astFiles[path])
		report.Functions = append(report.Functions, fileReport.Functions...)
	}

	return report
}

func computeAnemic(astFiles map[string]*gitxast.Node, corpus map[string]string) domain.AnemicReport {
	var report domain.AnemicReport

	for _, path := range sortedKeys(astFiles) {
		fileReport := anemic.Compute(path, astFiles[path], corpus)
		report.Classes = append(report.Classes, fileReport.Classes...)
	}

	return report
}

func sortedKeys(m map[string]*gitxast.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func countDistinctCommits(changes []domain.FileChange) int {
	seen := make(map[string]struct{})
	for _, c := range changes {
		seen[c.CommitID] = struct{}{}
	}

	return len(seen)
}

func countDistinctAuthors(changes []domain.FileChange) int {
	seen := make(map[string]struct{})
	for _, c := range changes {
		seen[c.Author] = struct{}{}
	}

	return len(seen)
}

func computeClusters(changes []domain.FileChange, seed int64) domain.ClusterReport {
	type commitAgg struct {
		timestamp    time.Time
		files        map[string]struct{}
		added        int
		deleted      int
	}

	aggs := make(map[string]*commitAgg)
	order := make([]string, 0)

	for _, c := range changes {
		agg, ok := aggs[c.CommitID]
		if !ok {
			agg = &commitAgg{timestamp: c.Timestamp, files: make(map[string]struct{})}
			aggs[c.CommitID] = agg
			order = append(order, c.CommitID)
		}

		agg.files[c.Path] = struct{}{}
		agg.added += c.AddedLines
		agg.deleted += c.DeletedLines
	}

	sort.Strings(order)

	commitIDs := make([]string, 0, len(order))
	timestamps := make([]time.Time, 0, len(order))
	fileCounts := make([]float64, 0, len(order))
	churns := make([]float64, 0, len(order))
	addRatios := make([]float64, 0, len(order))

	for _, id := range order {
		agg := aggs[id]
		commitIDs = append(commitIDs, id)
		timestamps = append(timestamps, agg.timestamp)
		fileCounts = append(fileCounts, float64(len(agg.files)))
		churns = append(churns, float64(agg.added+agg.deleted))
		addRatios = append(addRatios, domain.AddRatio(agg.added, agg.deleted))
	}

	if len(commitIDs) < 2 {
		return domain.ClusterReport{}
	}

	features := cluster.BuildFeatures(commitIDs, timestamps, fileCounts, churns, addRatios)

	return cluster.Compute(features, seed)
}

func computeEffort(hotspotReport domain.HotspotReport, knowledgeReport domain.KnowledgeReport, painReport domain.PainReport) domain.EffortReport {
	painByPath := make(map[string]float64, len(painReport.Files))
	for _, p := range painReport.Files {
		painByPath[p.Path] = p.Pain
	}

	knowledgeByPath := make(map[string]domain.FileKnowledge, len(knowledgeReport.Files))
	for _, k := range knowledgeReport.Files {
		knowledgeByPath[k.Path] = k
	}

	inputs := make([]effort.FileInputs, 0, len(hotspotReport.Files))

	for _, f := range hotspotReport.Files {
		k := knowledgeByPath[f.Path]
		inputs = append(inputs, effort.FileInputs{
			Path:                   f.Path,
			Churn:                  float64(f.Churn),
			Frequency:              float64(f.Frequency),
			Pain:                   painByPath[f.Path],
			KnowledgeConcentration: k.KDI,
			AuthorCount:            float64(len(k.Authors)),
			CommitDensity:          float64(f.Frequency),
			ReworkRatio:            f.ReworkRatio,
		})
	}

	return effort.Compute(inputs)
}

func computeDX(
	clusterReport domain.ClusterReport,
	hotspotReport domain.HotspotReport,
	knowledgeReport domain.KnowledgeReport,
	complexityReport domain.ComplexityReport,
	couplingReport domain.CouplingReport,
) domain.DXReport {
	densities := make([]float64, 0, len(hotspotReport.Files))
	reworkRatios := make([]float64, 0, len(hotspotReport.Files))

	for _, f := range hotspotReport.Files {
		densities = append(densities, float64(f.Frequency))
		reworkRatios = append(reworkRatios, f.ReworkRatio)
	}

	complexityByFile := make(map[string]float64)
	for _, fn := range complexityReport.Functions {
		complexityByFile[fn.File] += float64(fn.Cognitive)
	}

	coordinationByFile := make(map[string]float64)
	for _, p := range couplingReport.Pairs {
		coordinationByFile[p.FileA]++
		coordinationByFile[p.FileB]++
	}

	knowledgeByFile := make(map[string]float64)
	for _, k := range knowledgeReport.Files {
		knowledgeByFile[k.Path] = k.KDI
	}

	signals := make([]dx.FileSignal, 0, len(hotspotReport.Files))

	for _, f := range hotspotReport.Files {
		signals = append(signals, dx.FileSignal{
			Path:          f.Path,
			Complexity:    complexityByFile[f.Path],
			Coordination:  coordinationByFile[f.Path],
			Knowledge:     knowledgeByFile[f.Path],
			ChangeRate:    float64(f.Frequency),
		})
	}

	return dx.Compute(dx.Inputs{
		Clusters:     clusterReport,
		Densities:    densities,
		ReworkRatios: reworkRatios,
		Files:        signals,
	})
}
