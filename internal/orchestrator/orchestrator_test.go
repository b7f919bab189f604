package orchestrator_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jogendra123/git-xrays/internal/domain"
	"github.com/jogendra123/git-xrays/internal/observability"
	"github.com/jogendra123/git-xrays/internal/orchestrator"
)

type fakeRepo struct {
	changes []domain.FileChange
	first   time.Time
	last    time.Time
}

func (f *fakeRepo) CommitCount(_ context.Context) (int, error) { return len(f.changes), nil }
func (f *fakeRepo) FirstCommitDate(_ context.Context) (time.Time, error) { return f.first, nil }
func (f *fakeRepo) LastCommitDate(_ context.Context) (time.Time, error)  { return f.last, nil }

func (f *fakeRepo) FileChanges(_ context.Context, since, until *time.Time) ([]domain.FileChange, error) {
	var out []domain.FileChange

	for _, c := range f.changes {
		if since != nil && c.Timestamp.Before(*since) {
			continue
		}

		if until != nil && c.Timestamp.After(*until) {
			continue
		}

		out = append(out, c)
	}

	return out, nil
}

func (f *fakeRepo) ResolveRef(_ context.Context, _ string) (time.Time, error) { return f.last, nil }
func (f *fakeRepo) Close() error                                             { return nil }

type fakeSource struct {
	files map[string]string
}

func (f *fakeSource) ListSourceFiles(_ context.Context, _ string) ([]string, error) {
	out := make([]string, 0, len(f.files))
	for path := range f.files {
		out = append(out, path)
	}

	return out, nil
}

func (f *fakeSource) ReadFile(_ context.Context, path, _ string) ([]byte, error) {
	return []byte(f.files[path]), nil
}

const sampleGoSource = `package sample

type Widget struct {
	count int
}

func (w *Widget) Increment() {
	if w.count > 0 {
		w.count++
	}
}
`

func TestRun_ProducesAllNineReports(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	changes := []domain.FileChange{
		{CommitID: "c1", Author: "alice", Timestamp: base, Path: "widget.go", AddedLines: 10, DeletedLines: 0},
		{CommitID: "c2", Author: "bob", Timestamp: base.Add(24 * time.Hour), Path: "widget.go", AddedLines: 2, DeletedLines: 1},
		{CommitID: "c3", Author: "alice", Timestamp: base.Add(48 * time.Hour), Path: "other.go", AddedLines: 5, DeletedLines: 0},
	}

	repo := &fakeRepo{changes: changes, first: base, last: base.Add(72 * time.Hour)}
	src := &fakeSource{files: map[string]string{
		"widget.go": sampleGoSource,
		"other.go":  sampleGoSource,
	}}

	providers, err := observability.NewProviders(context.Background(), "git-xrays-test", "0.0.0-test", slog.LevelWarn, "json")
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	opts := orchestrator.Options{RepoPath: "/repo/sample", WindowDays: 90, KMeansSeed: 42}

	result, err := orchestrator.Run(context.Background(), repo, src, opts, providers.Tracer, providers.Logger, providers.Meter)
	require.NoError(t, err)

	assert.Equal(t, "/repo/sample", result.Run.RepoPath)
	assert.Equal(t, 2, result.Run.TotalFiles)
	assert.Equal(t, 3, result.Run.TotalCommits)
	assert.Equal(t, 2, result.Run.TotalAuthors)
	assert.NotEmpty(t, result.Bundle.Hotspot.Files)
	assert.NotEmpty(t, result.Bundle.Knowledge.Files)
	assert.NotEmpty(t, result.Bundle.Complexity.Functions)
	assert.NotEmpty(t, result.Bundle.Effort.Coefficients)
	require.NotNil(t, result.Run.DXScore)
}
