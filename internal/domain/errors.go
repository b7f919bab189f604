package domain

import "errors"

// Sentinel error kinds per the error-handling design (spec §7). Each
// wraps caller-supplied context with fmt.Errorf("...: %w", ...) so
// errors.Is/errors.As work across package boundaries.
var (
	// ErrInput flags an invalid window spec, unknown ref, or non-repo path.
	ErrInput = errors.New("input error")

	// ErrAdapter flags a failed subprocess/library call, a truncated
	// commit stream, or an unreadable blob. The adapter does not retry;
	// the error is surfaced with the failing path or commit id.
	ErrAdapter = errors.New("adapter error")

	// ErrAnalysis flags an empty input set after windowing. Not fatal:
	// pipelines degrade to zero-filled reports instead of raising this.
	ErrAnalysis = errors.New("analysis error")

	// ErrStore flags a transaction conflict or schema mismatch. Fatal:
	// no partial persist ever reaches the store.
	ErrStore = errors.New("store error")

	// ErrNotFound flags a run id lookup miss.
	ErrNotFound = errors.New("not found")
)
