// Package githubprovider implements core.GitProvider against the GitHub
// REST API via google/go-github, for production webhook-driven use.
package githubprovider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// Provider implements core.GitProvider over an authenticated *github.Client.
type Provider struct {
	client *github.Client
	logger *slog.Logger
}

// New wraps an already-authenticated GitHub client. Authentication (GitHub
// App installation tokens, or a PAT for local/offline use) is handled by
// auth.go before a Provider is constructed.
func New(client *github.Client, logger *slog.Logger) *Provider {
	return &Provider{client: client, logger: logger}
}

func splitSlug(slug string) (owner, repo string, err error) {
	parts := strings.SplitN(slug, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo slug %q", slug)
	}
	return parts[0], parts[1], nil
}

func (p *Provider) RepoSlug(ctx context.Context, pr core.PRRef) (string, error) {
	return pr.RepoSlug, nil
}

func (p *Provider) DefaultBranch(ctx context.Context, pr core.PRRef) (string, error) {
	owner, repo, err := splitSlug(pr.RepoSlug)
	if err != nil {
		return "", err
	}
	ghRepo, _, err := p.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		p.logger.Error("failed to get repository", "repo", pr.RepoSlug, "error", err)
		return "", err
	}
	return ghRepo.GetDefaultBranch(), nil
}

func (p *Provider) BranchHeadSHA(ctx context.Context, pr core.PRRef, branch string) (string, error) {
	owner, repo, err := splitSlug(pr.RepoSlug)
	if err != nil {
		return "", err
	}
	ref, _, err := p.client.Git.GetRef(ctx, owner, repo, "refs/heads/"+branch)
	if err != nil {
		p.logger.Error("failed to resolve branch head", "repo", pr.RepoSlug, "branch", branch, "error", err)
		return "", err
	}
	return ref.GetObject().GetSHA(), nil
}

func (p *Provider) Tree(ctx context.Context, pr core.PRRef, sha string) ([]core.TreeEntry, error) {
	owner, repo, err := splitSlug(pr.RepoSlug)
	if err != nil {
		return nil, err
	}
	tree, _, err := p.client.Git.GetTree(ctx, owner, repo, sha, true)
	if err != nil {
		p.logger.Error("failed to get git tree", "repo", pr.RepoSlug, "sha", sha, "error", err)
		return nil, err
	}

	entries := make([]core.TreeEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		entries = append(entries, core.TreeEntry{Path: entry.GetPath(), BlobSHA: entry.GetSHA()})
	}
	return entries, nil
}

func (p *Provider) Blob(ctx context.Context, pr core.PRRef, blobSHA string) (string, error) {
	owner, repo, err := splitSlug(pr.RepoSlug)
	if err != nil {
		return "", err
	}
	blob, _, err := p.client.Git.GetBlob(ctx, owner, repo, blobSHA)
	if err != nil {
		p.logger.Error("failed to fetch blob", "repo", pr.RepoSlug, "sha", blobSHA, "error", err)
		return "", err
	}

	if blob.GetEncoding() != "base64" {
		return blob.GetContent(), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(blob.GetContent())
	if err != nil {
		return "", fmt.Errorf("decode blob %s: %w", blobSHA, core.ErrDecodeFailure)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("blob %s is not utf-8: %w", blobSHA, core.ErrDecodeFailure)
	}
	return string(decoded), nil
}

func (p *Provider) DiffFiles(ctx context.Context, pr core.PRRef) ([]core.FileChange, error) {
	owner, repo, err := splitSlug(pr.RepoSlug)
	if err != nil {
		return nil, err
	}

	var changes []core.FileChange
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := p.client.PullRequests.ListFiles(ctx, owner, repo, pr.Number, opts)
		if err != nil {
			p.logger.Error("failed to list pull request files", "repo", pr.RepoSlug, "pr", pr.Number, "error", err)
			return nil, err
		}

		for _, f := range files {
			editType, ok := editTypeFromStatus(f.GetStatus())
			if !ok {
				p.logger.Warn("unknown file status in diff", "repo", pr.RepoSlug, "pr", pr.Number, "file", f.GetFilename(), "status", f.GetStatus())
				continue
			}

			var headContent string
			if editType != core.EditDeleted && f.GetSHA() != "" {
				headContent, err = p.Blob(ctx, pr, f.GetSHA())
				if err != nil {
					p.logger.Warn("failed to fetch head content for diff file, skipping content", "file", f.GetFilename(), "error", err)
				}
			}

			changes = append(changes, core.FileChange{
				Filename:    f.GetFilename(),
				OldFilename: f.GetPreviousFilename(),
				EditType:    editType,
				HeadContent: headContent,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return changes, nil
}

func editTypeFromStatus(status string) (core.EditType, bool) {
	switch status {
	case "added", "copied":
		return core.EditAdded, true
	case "modified", "changed":
		return core.EditModified, true
	case "removed":
		return core.EditDeleted, true
	case "renamed":
		return core.EditRenamed, true
	default:
		return core.EditUnknown, false
	}
}

var _ core.GitProvider = (*Provider)(nil)
