package core

import "context"

// GitProvider is the collaborator interface the RAG Index Manager consumes
// to resolve a pull request's repository, branches, tree, blobs, and diff.
// It is out of scope for the core itself (§6 of the specification); concrete
// implementations live in internal/githubprovider and internal/localprovider.
type GitProvider interface {
	// RepoSlug returns the "owner/repo"-style identifier used by the Naming
	// Scheme.
	RepoSlug(ctx context.Context, pr PRRef) (string, error)

	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context, pr PRRef) (string, error)

	// BranchHeadSHA returns the commit SHA at the tip of the named branch.
	BranchHeadSHA(ctx context.Context, pr PRRef, branch string) (string, error)

	// Tree returns every blob entry of the recursive tree at sha. Only blob
	// entries are returned; tree/submodule entries are omitted by the
	// implementation.
	Tree(ctx context.Context, pr PRRef, sha string) ([]TreeEntry, error)

	// Blob fetches and decodes (from the provider's wire encoding, typically
	// base64) the text content of the blob identified by its SHA. Returns
	// ErrDecodeFailure if the content is not valid UTF-8.
	Blob(ctx context.Context, pr PRRef, blobSHA string) (string, error)

	// DiffFiles returns the PR's changed files at the head commit, including
	// head-file content for anything but pure deletes.
	DiffFiles(ctx context.Context, pr PRRef) ([]FileChange, error)
}

// TreeEntry is one blob leaf of a recursive Git tree walk.
type TreeEntry struct {
	Path    string
	BlobSHA string
}
