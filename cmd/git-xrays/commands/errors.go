// Package commands implements CLI command handlers for git-xrays.
package commands

import (
	"errors"

	"github.com/jogendra123/git-xrays/internal/domain"
)

// Exit codes per the CLI surface: 0 success, 1 user error, 2 internal error.
const (
	ExitOK       = 0
	ExitUserErr  = 1
	ExitInternal = 2
)

// Sentinel errors for flag validation.
var (
	ErrMutuallyExclusiveRefs = errors.New("--at cannot be combined with --from/--to")
	ErrAllExcludesRange      = errors.New("--all cannot be combined with --from/--to")
	ErrMissingPath           = errors.New("repository path is required")
	ErrIncompleteRange       = errors.New("--from and --to must both be set")
)

// ExitCodeFor classifies a top-level error into the CLI's exit-code
// contract: domain.ErrInput (and command-local flag-validation errors)
// are user errors; everything else is treated as internal.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	switch {
	case errors.Is(err, domain.ErrInput),
		errors.Is(err, ErrMutuallyExclusiveRefs),
		errors.Is(err, ErrAllExcludesRange),
		errors.Is(err, ErrMissingPath),
		errors.Is(err, ErrIncompleteRange):
		return ExitUserErr
	default:
		return ExitInternal
	}
}
