// Package localprovider implements core.GitProvider against a local go-git
// clone/worktree, for CLI and offline/test workflows where no GitHub App
// installation is available.
package localprovider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// Provider implements core.GitProvider over a clone root on disk: one
// non-bare clone (with worktree) per repo slug, cloned on first use and
// fetched thereafter.
type Provider struct {
	cloneRoot string
	cloneURL  string // base clone URL, e.g. "https://github.com/"
	authToken string // optional; empty means an unauthenticated clone
	logger    *slog.Logger
}

// New constructs a Provider rooted at cloneRoot. cloneURL is the Git hosting
// base URL ("https://github.com/"); authToken, if non-empty, is sent as an
// x-access-token Basic-Auth password on clone/fetch.
func New(cloneRoot, cloneURL, authToken string, logger *slog.Logger) *Provider {
	return &Provider{cloneRoot: cloneRoot, cloneURL: cloneURL, authToken: authToken, logger: logger}
}

func (p *Provider) repoPath(repoSlug string) string {
	return filepath.Join(p.cloneRoot, repoSlug)
}

// open returns an already-cloned repository, cloning it first if its local
// path does not yet exist.
func (p *Provider) open(ctx context.Context, pr core.PRRef) (*git.Repository, error) {
	path := p.repoPath(pr.RepoSlug)

	repo, err := git.PlainOpen(path)
	if err == nil {
		if fetchErr := p.fetch(ctx, repo); fetchErr != nil {
			p.logger.Warn("fetch failed, continuing with local state", "repo", pr.RepoSlug, "error", fetchErr)
		}
		return repo, nil
	}

	repo, cloneErr := p.clone(ctx, pr.RepoSlug, path)
	if cloneErr != nil {
		return nil, fmt.Errorf("clone %s: %w", pr.RepoSlug, core.ErrProviderUnavailable)
	}
	return repo, nil
}

func (p *Provider) clone(ctx context.Context, repoSlug, path string) (*git.Repository, error) {
	cloneCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create clone parent directory: %w", err)
	}
	_ = os.RemoveAll(path)

	cloneURL, err := url.Parse(strings.TrimSuffix(p.cloneURL, "/") + "/" + repoSlug + ".git")
	if err != nil {
		return nil, fmt.Errorf("invalid clone url: %w", err)
	}
	if p.authToken != "" {
		cloneURL.User = url.UserPassword("x-access-token", p.authToken)
	}

	return git.PlainCloneContext(cloneCtx, path, false, &git.CloneOptions{URL: cloneURL.String()})
}

func (p *Provider) fetch(ctx context.Context, repo *git.Repository) error {
	opts := &git.FetchOptions{RemoteName: "origin", Force: true}
	if p.authToken != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: p.authToken}
	}
	err := repo.FetchContext(ctx, opts)
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return err
	}
	return nil
}

func (p *Provider) RepoSlug(ctx context.Context, pr core.PRRef) (string, error) {
	return pr.RepoSlug, nil
}

func (p *Provider) DefaultBranch(ctx context.Context, pr core.PRRef) (string, error) {
	repo, err := p.open(ctx, pr)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Name().Short(), nil
}

func (p *Provider) BranchHeadSHA(ctx context.Context, pr core.PRRef, branch string) (string, error) {
	repo, err := p.open(ctx, pr)
	if err != nil {
		return "", err
	}
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		ref, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
		if err != nil {
			return "", fmt.Errorf("resolve branch %s: %w", branch, err)
		}
	}
	return ref.Hash().String(), nil
}

func (p *Provider) Tree(ctx context.Context, pr core.PRRef, sha string) ([]core.TreeEntry, error) {
	repo, err := p.open(ctx, pr)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("find commit %s: %w", sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree for %s: %w", sha, err)
	}

	var entries []core.TreeEntry
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err != nil {
			break
		}
		if !entry.Mode.IsFile() {
			continue
		}
		entries = append(entries, core.TreeEntry{Path: name, BlobSHA: entry.Hash.String()})
	}
	return entries, nil
}

func (p *Provider) Blob(ctx context.Context, pr core.PRRef, blobSHA string) (string, error) {
	repo, err := p.open(ctx, pr)
	if err != nil {
		return "", err
	}
	blob, err := repo.BlobObject(plumbing.NewHash(blobSHA))
	if err != nil {
		return "", fmt.Errorf("find blob %s: %w", blobSHA, err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return "", fmt.Errorf("open blob %s: %w", blobSHA, err)
	}
	defer reader.Close()

	buf := make([]byte, blob.Size)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", fmt.Errorf("read blob %s: %w", blobSHA, core.ErrDecodeFailure)
	}
	if !isValidUTF8(buf) {
		return "", fmt.Errorf("blob %s is not utf-8: %w", blobSHA, core.ErrDecodeFailure)
	}
	return string(buf), nil
}

func (p *Provider) DiffFiles(ctx context.Context, pr core.PRRef) ([]core.FileChange, error) {
	repo, err := p.open(ctx, pr)
	if err != nil {
		return nil, err
	}

	headSHA, err := p.BranchHeadSHA(ctx, pr, pr.HeadBranch)
	if err != nil {
		return nil, err
	}
	baseSHA, err := p.BranchHeadSHA(ctx, pr, pr.BaseBranch)
	if err != nil {
		return nil, err
	}

	baseCommit, err := repo.CommitObject(plumbing.NewHash(baseSHA))
	if err != nil {
		return nil, fmt.Errorf("find base commit %s: %w", baseSHA, err)
	}
	headCommit, err := repo.CommitObject(plumbing.NewHash(headSHA))
	if err != nil {
		return nil, fmt.Errorf("find head commit %s: %w", headSHA, err)
	}
	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, err
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, err
	}

	treeChanges, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	var changes []core.FileChange
	for _, change := range treeChanges {
		action, err := change.Action()
		if err != nil {
			p.logger.Error("failed to get action for git change, skipping", "error", err)
			continue
		}

		fc := core.FileChange{}
		switch action {
		case merkletrie.Insert:
			fc.Filename = change.To.Name
			fc.EditType = core.EditAdded
		case merkletrie.Modify:
			fc.Filename = change.To.Name
			fc.EditType = core.EditModified
		case merkletrie.Delete:
			fc.Filename = change.From.Name
			fc.EditType = core.EditDeleted
		default:
			continue
		}

		if fc.EditType != core.EditDeleted {
			entry, err := headTree.File(fc.Filename)
			if err == nil {
				content, err := entry.Contents()
				if err == nil {
					fc.HeadContent = content
				}
			}
		}
		changes = append(changes, fc)
	}
	return changes, nil
}

func isValidUTF8(b []byte) bool {
	return len(b) == 0 || strings.ToValidUTF8(string(b), "�") == string(b)
}

var _ core.GitProvider = (*Provider)(nil)
