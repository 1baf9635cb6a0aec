package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/rag-index-manager/internal/core"
	"github.com/sevigo/rag-index-manager/internal/githubprovider"
	"github.com/sevigo/rag-index-manager/internal/gitutil"
	"github.com/sevigo/rag-index-manager/internal/localprovider"
	"github.com/sevigo/rag-index-manager/internal/ragclient"
	"github.com/sevigo/rag-index-manager/internal/ragindex"
)

// newManager wires a Manager against the configured RAG backend and a
// provider chosen from the available credentials: a GitHub PAT if one is
// configured, otherwise a local go-git clone under RagIndex.CloneRoot.
func newManager() *ragindex.Manager {
	backend := ragclient.New(cfg.RagIndex.RagBackendBaseURL, nil)

	resolve := func(ctx context.Context, pr core.PRRef) (core.GitProvider, error) {
		if cfg.GitHub.Token != "" {
			return githubprovider.NewPATClient(ctx, cfg.GitHub.Token, log), nil
		}
		return localprovider.New(cfg.RagIndex.CloneRoot, cfg.RagIndex.GitCloneBaseURL, cfg.GitHub.Token, log), nil
	}

	managerCfg := ragindex.ManagerConfig{
		EnabledBaseBranches: cfg.RagIndex.EnabledBaseBranches,
		IgnoreDirectories:   cfg.RagIndex.IgnoreDirectories,
		AllowedLanguages:    cfg.RagIndex.AllowedLanguages,
		BatchSize:           cfg.RagIndex.BatchSize,
		QueryTokenBuffer:    cfg.RagIndex.QueryTokenBuffer,
	}
	return ragindex.NewManager(log, backend, resolve, managerCfg)
}

// addPRFlags registers the flags common to every command that targets a
// single pull request. --repo/--pr can be supplied directly, or derived
// from a GitHub PR URL via --pr-url.
func addPRFlags(cmd *cobra.Command) {
	cmd.Flags().String("repo", "", "repository slug, e.g. owner/repo")
	cmd.Flags().Int("pr", 0, "pull request number")
	cmd.Flags().String("pr-url", "", "GitHub pull request URL, e.g. https://github.com/owner/repo/pull/123 (alternative to --repo/--pr)")
	cmd.Flags().String("base", "", "merge-target branch name")
	cmd.Flags().String("head", "", "PR source branch name")
	_ = cmd.MarkFlagRequired("base")
}

func prRefFromFlags(cmd *cobra.Command) (core.PRRef, error) {
	repo, err := cmd.Flags().GetString("repo")
	if err != nil {
		return core.PRRef{}, err
	}
	number, err := cmd.Flags().GetInt("pr")
	if err != nil {
		return core.PRRef{}, err
	}
	prURL, err := cmd.Flags().GetString("pr-url")
	if err != nil {
		return core.PRRef{}, err
	}
	if prURL != "" {
		owner, repoName, prNumber, err := gitutil.ParsePullRequestURL(prURL)
		if err != nil {
			return core.PRRef{}, err
		}
		repo = owner + "/" + repoName
		number = prNumber
	}
	if repo == "" {
		return core.PRRef{}, fmt.Errorf("either --repo or --pr-url is required")
	}
	base, err := cmd.Flags().GetString("base")
	if err != nil {
		return core.PRRef{}, err
	}
	head, err := cmd.Flags().GetString("head")
	if err != nil {
		return core.PRRef{}, err
	}
	return core.PRRef{RepoSlug: repo, Number: number, BaseBranch: base, HeadBranch: head}, nil
}
