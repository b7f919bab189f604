package gitadapter

import (
	"context"
	"fmt"
	"sort"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// LibGit2Repository implements Repository and Source over libgit2 via
// git2go. One instance wraps one long-lived repository handle, reused
// across every pipeline in a single analysis and released by Close.
type LibGit2Repository struct {
	repo *git2go.Repository
	path string
}

var (
	_ Repository = (*LibGit2Repository)(nil)
	_ Source     = (*LibGit2Repository)(nil)
)

// OpenLibGit2Repository opens the repository at path.
func OpenLibGit2Repository(path string) (*LibGit2Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open repository at %q: %v", domain.ErrInput, path, err)
	}

	return &LibGit2Repository{repo: repo, path: path}, nil
}

// Close releases the underlying libgit2 handle.
func (r *LibGit2Repository) Close() error {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}

	return nil
}

func (r *LibGit2Repository) walkAscending(cb func(c *git2go.Commit) error) error {
	walk, err := r.repo.Walk()
	if err != nil {
		return fmt.Errorf("%w: create revwalk: %v", domain.ErrAdapter, err)
	}
	defer walk.Free()

	walk.Sorting(git2go.SortTime | git2go.SortReverse)

	if pushErr := walk.PushHead(); pushErr != nil {
		return fmt.Errorf("%w: push HEAD: %v", domain.ErrAdapter, pushErr)
	}

	oid := new(git2go.Oid)

	for {
		nextErr := walk.Next(oid)
		if nextErr != nil {
			break // end of walk
		}

		commit, lookupErr := r.repo.LookupCommit(oid)
		if lookupErr != nil {
			continue
		}

		cbErr := cb(commit)
		commit.Free()

		if cbErr != nil {
			return cbErr
		}
	}

	return nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (r *LibGit2Repository) CommitCount(_ context.Context) (int, error) {
	count := 0

	err := r.walkAscending(func(_ *git2go.Commit) error {
		count++

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// FirstCommitDate returns the oldest commit's author timestamp.
func (r *LibGit2Repository) FirstCommitDate(_ context.Context) (time.Time, error) {
	var first time.Time

	found := false

	err := r.walkAscending(func(c *git2go.Commit) error {
		if !found {
			first = c.Author().When
			found = true
		}

		return errStopWalk
	})
	if err != nil && err != errStopWalk {
		return time.Time{}, err
	}

	if !found {
		return time.Time{}, fmt.Errorf("%w: repository has no commits", domain.ErrAnalysis)
	}

	return first, nil
}

// LastCommitDate returns the newest commit's author timestamp.
func (r *LibGit2Repository) LastCommitDate(_ context.Context) (time.Time, error) {
	var last time.Time

	found := false

	err := r.walkAscending(func(c *git2go.Commit) error {
		last = c.Author().When
		found = true

		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	if !found {
		return time.Time{}, fmt.Errorf("%w: repository has no commits", domain.ErrAnalysis)
	}

	return last, nil
}

// errStopWalk is an internal sentinel used to short-circuit walkAscending.
var errStopWalk = fmt.Errorf("stop walk")

// FileChanges streams per-file added/deleted line counts for every commit
// in [since, until], ascending by commit timestamp. Each commit is diffed
// against its first parent (or, for the root commit, against an empty
// tree).
func (r *LibGit2Repository) FileChanges(_ context.Context, since, until *time.Time) ([]domain.FileChange, error) {
	var changes []domain.FileChange

	walkErr := r.walkAscending(func(commit *git2go.Commit) error {
		when := commit.Author().When

		if since != nil && when.Before(*since) {
			return nil
		}

		if until != nil && when.After(*until) {
			return nil
		}

		commitChanges, diffErr := r.diffCommit(commit)
		if diffErr != nil {
			return fmt.Errorf("%w: diff commit %s: %v", domain.ErrAdapter, commit.Id().String(), diffErr)
		}

		changes = append(changes, commitChanges...)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return changes, nil
}

func (r *LibGit2Repository) diffCommit(commit *git2go.Commit) ([]domain.FileChange, error) {
	newTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("commit tree: %w", err)
	}
	defer newTree.Free()

	var oldTree *git2go.Tree

	if commit.ParentCount() > 0 {
		parent := commit.Parent(0)
		if parent != nil {
			defer parent.Free()

			oldTree, err = parent.Tree()
			if err != nil {
				return nil, fmt.Errorf("parent tree: %w", err)
			}

			defer oldTree.Free()
		}
	}

	diff, err := r.repo.DiffTreeToTree(oldTree, newTree, &git2go.DiffOptions{})
	if err != nil {
		return nil, fmt.Errorf("diff tree to tree: %w", err)
	}
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("num deltas: %w", err)
	}

	author := commit.Author()
	commitID := commit.Id().String()
	when := author.When

	changes := make([]domain.FileChange, 0, numDeltas)

	for i := range numDeltas {
		patch, patchErr := diff.Patch(i)
		if patchErr != nil {
			continue
		}

		_, additions, deletions, statErr := patch.LineStats()

		patch.Free()

		if statErr != nil {
			continue
		}

		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			continue
		}

		path := delta.NewFile.Path
		if path == "" {
			path = delta.OldFile.Path
		}

		changes = append(changes, domain.FileChange{
			CommitID:     commitID,
			Author:       author.Name,
			Timestamp:    when,
			Path:         path,
			AddedLines:   additions,
			DeletedLines: deletions,
		})
	}

	return changes, nil
}

// ResolveRef resolves a SHA prefix, tag, branch, or ISO-8601 date to the
// instant of the referenced commit, or the commit closest-before a date.
func (r *LibGit2Repository) ResolveRef(_ context.Context, ref string) (time.Time, error) {
	if obj, err := r.repo.RevparseSingle(ref); err == nil {
		defer obj.Free()

		commit, peelErr := obj.Peel(git2go.ObjectCommit)
		if peelErr == nil {
			c, castErr := commit.AsCommit()
			if castErr == nil {
				defer c.Free()

				return c.Author().When, nil
			}
		}
	}

	asDate, dateErr := time.Parse("2006-01-02", ref)
	if dateErr != nil {
		asDate, dateErr = time.Parse(time.RFC3339, ref)
	}

	if dateErr != nil {
		return time.Time{}, fmt.Errorf("%w: unresolvable ref %q", domain.ErrInput, ref)
	}

	return r.closestCommitBefore(asDate)
}

func (r *LibGit2Repository) closestCommitBefore(cutoff time.Time) (time.Time, error) {
	var candidates []time.Time

	err := r.walkAscending(func(c *git2go.Commit) error {
		when := c.Author().When
		if !when.After(cutoff) {
			candidates = append(candidates, when)
		}

		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	if len(candidates) == 0 {
		return time.Time{}, fmt.Errorf("%w: no commit before %s", domain.ErrInput, cutoff)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	return candidates[len(candidates)-1], nil
}

// ListSourceFiles lists every blob path in the tree at ref (HEAD if empty).
func (r *LibGit2Repository) ListSourceFiles(_ context.Context, ref string) ([]string, error) {
	tree, free, err := r.treeForRef(ref)
	if err != nil {
		return nil, err
	}
	defer free()

	var paths []string

	walkErr := tree.Walk(func(rootPath string, entry *git2go.TreeEntry) error {
		if entry.Type != git2go.ObjectBlob {
			return nil
		}

		paths = append(paths, rootPath+entry.Name)

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: walk tree: %v", domain.ErrAdapter, walkErr)
	}

	return paths, nil
}

// ReadFile returns the bytes of path as of ref (HEAD if empty).
func (r *LibGit2Repository) ReadFile(_ context.Context, path, ref string) ([]byte, error) {
	tree, free, err := r.treeForRef(ref)
	if err != nil {
		return nil, err
	}
	defer free()

	entry, entryErr := tree.EntryByPath(path)
	if entryErr != nil {
		return nil, fmt.Errorf("%w: entry for %q: %v", domain.ErrAdapter, path, entryErr)
	}

	blob, blobErr := r.repo.LookupBlob(entry.Id)
	if blobErr != nil {
		return nil, fmt.Errorf("%w: lookup blob for %q: %v", domain.ErrAdapter, path, blobErr)
	}
	defer blob.Free()

	contents := make([]byte, len(blob.Contents()))
	copy(contents, blob.Contents())

	return contents, nil
}

func (r *LibGit2Repository) treeForRef(ref string) (*git2go.Tree, func(), error) {
	if ref == "" {
		ref = "HEAD"
	}

	obj, err := r.repo.RevparseSingle(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: revparse %q: %v", domain.ErrInput, ref, err)
	}
	defer obj.Free()

	commitObj, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: peel to commit: %v", domain.ErrInput, err)
	}

	commit, err := commitObj.AsCommit()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: as commit: %v", domain.ErrInput, err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: commit tree: %v", domain.ErrAdapter, err)
	}

	return tree, tree.Free, nil
}
