// Package gitadapter defines the two capability sets the analytical core
// consumes from a version-control backend, and a libgit2-backed
// implementation of them.
//
// The core never talks to libgit2, a subprocess, or any VCS library
// directly — it only ever depends on the Repository and Source
// interfaces below, wired in by construction at the orchestrator's
// boundary (spec §9, "Dynamic duck-typed adapter ports").
package gitadapter

import (
	"context"
	"time"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// Repository exposes commit-history queries over a VCS backend.
type Repository interface {
	// CommitCount returns the total number of commits reachable from HEAD.
	CommitCount(ctx context.Context) (int, error)

	// FirstCommitDate returns the timestamp of the oldest commit.
	FirstCommitDate(ctx context.Context) (time.Time, error)

	// LastCommitDate returns the timestamp of the newest commit.
	LastCommitDate(ctx context.Context) (time.Time, error)

	// FileChanges streams FileChange records for commits in [since, until],
	// ascending by commit timestamp. A nil bound is unbounded on that side.
	FileChanges(ctx context.Context, since, until *time.Time) ([]domain.FileChange, error)

	// ResolveRef resolves a SHA prefix, tag, branch, or ISO-8601 date to
	// the instant of the referenced commit (or the commit closest-before
	// a date).
	ResolveRef(ctx context.Context, ref string) (time.Time, error)

	// Close releases the repository handle. Safe to call once.
	Close() error
}

// Source exposes read access to a repository's tree at a given ref.
type Source interface {
	// ListSourceFiles lists every blob path in the tree at ref (empty ref
	// means HEAD).
	ListSourceFiles(ctx context.Context, ref string) ([]string, error)

	// ReadFile returns the bytes of path as of ref (empty ref means HEAD).
	ReadFile(ctx context.Context, path, ref string) ([]byte, error)
}
