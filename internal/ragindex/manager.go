package ragindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// ProviderResolver resolves the Git provider that should service pr. A
// deployment typically has exactly one (GitHub-API-backed or local), but the
// Manager takes a resolver rather than a single provider so that callers
// (e.g. a CLI pointed at a local clone) can swap providers per call.
type ProviderResolver func(ctx context.Context, pr core.PRRef) (core.GitProvider, error)

// Recorder is the Manager's optional observability collaborator: every
// exposed operation reports its outcome after the fact. A nil Recorder (the
// default) makes this a no-op, matching the audit log's "best-effort,
// never blocks the caller" design.
type Recorder interface {
	Record(ctx context.Context, repoFullName string, prNumber int, operation, indexName, outcome, detail string)
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, repoFullName string, prNumber int, operation, indexName, outcome, detail string) {
}

// Manager is the Lifecycle Coordinator (C6): the single entry point holding
// the Manager Lock and enforcing base-branch policy across create, update,
// and delete operations for both base and head indexes.
type Manager struct {
	log      *slog.Logger
	backend  core.RAGBackend
	resolve  ProviderResolver
	cfg      ManagerConfig
	tempRoot string
	recorder Recorder

	seedGroup singleflight.Group // keyed by base index name
	applyMu   sync.Mutex         // guards the apply phase of updateBaseBranchIndex
}

// NewManager constructs a Manager. It panics if any required dependency is
// nil, matching the teacher's constructor-time invariant-check convention.
func NewManager(log *slog.Logger, backend core.RAGBackend, resolve ProviderResolver, cfg ManagerConfig) *Manager {
	if log == nil {
		panic("ragindex: NewManager requires a non-nil logger")
	}
	if backend == nil {
		panic("ragindex: NewManager requires a non-nil RAGBackend")
	}
	if resolve == nil {
		panic("ragindex: NewManager requires a non-nil ProviderResolver")
	}
	if len(cfg.AllowedLanguages) == 0 {
		panic("ragindex: NewManager requires at least one allowed language")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	tempRoot := os.TempDir()
	return &Manager{log: log, backend: backend, resolve: resolve, cfg: cfg, tempRoot: tempRoot, recorder: noopRecorder{}}
}

// WithRecorder attaches a Recorder that observes every operation's outcome.
func (m *Manager) WithRecorder(recorder Recorder) *Manager {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	m.recorder = recorder
	return m
}

// CreateBaseBranchIndex seeds the base index for pr's merge-target branch
// from the repository's default branch, if it does not already exist. A
// disabled base branch is a logged no-op, not an error.
func (m *Manager) CreateBaseBranchIndex(ctx context.Context, pr core.PRRef) error {
	if !m.cfg.baseBranchEnabled(pr.BaseBranch) {
		m.log.Info("base branch not enabled by policy, skipping", "repo", pr.RepoSlug, "base_branch", pr.BaseBranch)
		m.recorder.Record(ctx, pr.RepoSlug, pr.Number, "create_base", "", "noop_policy_blocked", "")
		return nil
	}

	base := IndexName(pr.RepoSlug, pr.BaseBranch)

	_, err, _ := m.seedGroup.Do(base, func() (any, error) {
		return nil, m.createBaseIndexOnce(ctx, pr, base)
	})
	m.recordOutcome(ctx, pr, "create_base", base, err)
	return err
}

// recordOutcome reports a definite (applied or error) outcome; policy and
// emptiness no-ops are recorded inline at their own call sites.
func (m *Manager) recordOutcome(ctx context.Context, pr core.PRRef, operation, index string, err error) {
	if err != nil {
		m.recorder.Record(ctx, pr.RepoSlug, pr.Number, operation, index, "error", err.Error())
		return
	}
	m.recorder.Record(ctx, pr.RepoSlug, pr.Number, operation, index, "applied", "")
}

// createBaseIndexOnce double-checks the index does not already exist (the
// singleflight call may have been a duplicate queued behind an in-flight
// seed that just finished) before walking the default branch tree.
func (m *Manager) createBaseIndexOnce(ctx context.Context, pr core.PRRef, base string) error {
	provider, err := m.resolve(ctx, pr)
	if err != nil {
		return fmt.Errorf("resolve git provider: %w", core.ErrProviderUnavailable)
	}

	exists, err := m.indexExists(ctx, base)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	defaultBranch := pr.DefaultBranch
	if defaultBranch == "" {
		defaultBranch, err = provider.DefaultBranch(ctx, pr)
		if err != nil {
			return fmt.Errorf("resolve default branch: %w", core.ErrProviderUnavailable)
		}
	}
	sha, err := provider.BranchHeadSHA(ctx, pr, defaultBranch)
	if err != nil {
		return fmt.Errorf("resolve head sha of %s: %w", defaultBranch, core.ErrProviderUnavailable)
	}

	m.log.Info("seeding base index", "index", base, "repo", pr.RepoSlug, "branch", defaultBranch)
	return seedIndex(ctx, m.log, provider, m.backend, pr, sha, base, m.cfg)
}

// UpdateBaseBranchIndex applies a merged PR's diff to its base index,
// creating the base index from scratch first if it does not yet exist.
func (m *Manager) UpdateBaseBranchIndex(ctx context.Context, pr core.PRRef) error {
	if !m.cfg.baseBranchEnabled(pr.BaseBranch) {
		m.log.Info("base branch not enabled by policy, skipping update", "repo", pr.RepoSlug, "base_branch", pr.BaseBranch)
		m.recorder.Record(ctx, pr.RepoSlug, pr.Number, "update_base", "", "noop_policy_blocked", "")
		return nil
	}

	base := IndexName(pr.RepoSlug, pr.BaseBranch)
	exists, err := m.indexExists(ctx, base)
	if err != nil {
		return err
	}
	if !exists {
		return m.CreateBaseBranchIndex(ctx, pr)
	}

	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	err = m.applyDiff(ctx, pr, base, "update_base")
	return err
}

// applyDiff resolves the provider, plans, and applies a PR's diff against
// index, recording the operation's outcome (including the emptiness
// shortcut, which is its own distinct no-op outcome per the original
// source's logging).
func (m *Manager) applyDiff(ctx context.Context, pr core.PRRef, index, operation string) error {
	provider, err := m.resolve(ctx, pr)
	if err != nil {
		err = fmt.Errorf("resolve git provider: %w", core.ErrProviderUnavailable)
		m.recordOutcome(ctx, pr, operation, index, err)
		return err
	}
	changes, err := provider.DiffFiles(ctx, pr)
	if err != nil {
		err = fmt.Errorf("get diff files: %w", core.ErrProviderUnavailable)
		m.recordOutcome(ctx, pr, operation, index, err)
		return err
	}

	plan, err := planDocuments(ctx, m.log, m.backend, index, changes, m.cfg)
	if err != nil {
		m.recordOutcome(ctx, pr, operation, index, err)
		return err
	}
	if plan.Empty() {
		m.log.Info("no changes detected, skipping index update", "index", index)
		m.recorder.Record(ctx, pr.RepoSlug, pr.Number, operation, index, "noop_empty_plan", "")
		return nil
	}

	err = applyPlan(ctx, m.backend, index, plan)
	m.recordOutcome(ctx, pr, operation, index, err)
	return err
}

// CreateNewPrIndex creates a PR's head index by cloning its base index (or
// seeding the base first, if needed) and then applying the PR's diff.
func (m *Manager) CreateNewPrIndex(ctx context.Context, pr core.PRRef) error {
	if !m.cfg.baseBranchEnabled(pr.BaseBranch) {
		m.log.Info("base branch not enabled by policy, skipping pr index create", "repo", pr.RepoSlug, "base_branch", pr.BaseBranch)
		m.recorder.Record(ctx, pr.RepoSlug, pr.Number, "create_pr", "", "noop_policy_blocked", "")
		return nil
	}

	base := IndexName(pr.RepoSlug, pr.BaseBranch)
	head := IndexName(pr.RepoSlug, pr.HeadBranch)

	baseExists, err := m.indexExists(ctx, base)
	if err != nil {
		return err
	}
	if !baseExists {
		if err := m.CreateBaseBranchIndex(ctx, pr); err != nil {
			return err
		}
	}

	if err := cloneIndex(ctx, m.backend, m.tempRoot, base, head); err != nil {
		m.recordOutcome(ctx, pr, "create_pr", head, err)
		return err
	}

	return m.UpdatePrIndex(ctx, pr)
}

// UpdatePrIndex applies a PR's diff to its head index, creating the head
// index first (by cloning) if it does not yet exist.
func (m *Manager) UpdatePrIndex(ctx context.Context, pr core.PRRef) error {
	if !m.cfg.baseBranchEnabled(pr.BaseBranch) {
		m.log.Info("base branch not enabled by policy, skipping pr index update", "repo", pr.RepoSlug, "base_branch", pr.BaseBranch)
		m.recorder.Record(ctx, pr.RepoSlug, pr.Number, "update_pr", "", "noop_policy_blocked", "")
		return nil
	}

	head := IndexName(pr.RepoSlug, pr.HeadBranch)
	exists, err := m.indexExists(ctx, head)
	if err != nil {
		return err
	}
	if !exists {
		return m.CreateNewPrIndex(ctx, pr)
	}

	return m.applyDiff(ctx, pr, head, "update_pr")
}

// DeletePrIndex removes a PR's head index unconditionally. No policy gate
// applies: cleanup must always succeed if resources exist.
func (m *Manager) DeletePrIndex(ctx context.Context, pr core.PRRef) error {
	head := IndexName(pr.RepoSlug, pr.HeadBranch)
	exists, err := m.indexExists(ctx, head)
	if err != nil {
		return err
	}
	if !exists {
		m.log.Info("head index does not exist, nothing to delete", "index", head)
		m.recorder.Record(ctx, pr.RepoSlug, pr.Number, "delete_pr", head, "noop_empty_plan", "")
		return nil
	}
	if err := m.backend.DeleteIndex(ctx, head); err != nil {
		err = fmt.Errorf("delete head index %q: %w", head, core.ErrBackendFatal)
		m.recordOutcome(ctx, pr, "delete_pr", head, err)
		return err
	}
	m.recordOutcome(ctx, pr, "delete_pr", head, nil)
	return nil
}

func (m *Manager) indexExists(ctx context.Context, name string) (bool, error) {
	names, err := m.backend.ListIndexes(ctx)
	if err != nil {
		return false, fmt.Errorf("list indexes: %w", core.ErrBackendFatal)
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
