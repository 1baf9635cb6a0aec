package core

import "errors"

// Sentinel error kinds for the RAG Index Manager. Implementations wrap one
// of these with fmt.Errorf("...: %w", ErrX) at the point of creation; callers
// test with errors.Is rather than a closed error-type hierarchy.
var (
	// ErrProviderUnavailable means no Git provider could be resolved for a PR.
	// Fatal to the operation; surfaced to the caller.
	ErrProviderUnavailable = errors.New("no git provider available")

	// ErrIndexMissing means an operation (typically query) required an index
	// that does not exist.
	ErrIndexMissing = errors.New("index does not exist")

	// ErrPolicyBlocked means the PR's merge-target branch is not in the
	// enabled base branches list. Callers treat this as a success-noop, not
	// a failure.
	ErrPolicyBlocked = errors.New("base branch not enabled by policy")

	// ErrBackendTransient marks a single batch/flush failure during seeding
	// that does not abort the seed.
	ErrBackendTransient = errors.New("transient rag backend failure")

	// ErrBackendFatal marks a backend failure that aborts the operation.
	ErrBackendFatal = errors.New("fatal rag backend failure")

	// ErrDecodeFailure means a blob could not be decoded as UTF-8 text.
	ErrDecodeFailure = errors.New("blob decode failure")

	// ErrUnknownEditType means a diff entry carried an edit kind the planner
	// does not recognize.
	ErrUnknownEditType = errors.New("unknown edit type")
)
