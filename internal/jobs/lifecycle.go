package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// LifecycleManager is the subset of ragindex.Manager this job depends on,
// kept narrow so tests can fake it without pulling in the real Coordinator.
type LifecycleManager interface {
	CreateNewPrIndex(ctx context.Context, pr core.PRRef) error
	UpdatePrIndex(ctx context.Context, pr core.PRRef) error
	UpdateBaseBranchIndex(ctx context.Context, pr core.PRRef) error
	DeletePrIndex(ctx context.Context, pr core.PRRef) error
}

// LifecycleJob routes a webhook-derived LifecycleEvent to the Lifecycle
// Coordinator operation its action implies.
type LifecycleJob struct {
	manager LifecycleManager
	logger  *slog.Logger
}

// NewLifecycleJob creates a new LifecycleJob with its dependencies.
func NewLifecycleJob(manager LifecycleManager, logger *slog.Logger) core.Job {
	if manager == nil || logger == nil {
		panic("NewLifecycleJob received a nil dependency")
	}
	return &LifecycleJob{manager: manager, logger: logger}
}

// Run acts as a router, directing the event to the correct lifecycle
// operation based on the webhook action it was derived from.
func (j *LifecycleJob) Run(ctx context.Context, event *core.LifecycleEvent) error {
	if err := j.validateInputs(event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return err
	}

	pr := event.PR()

	switch event.Action {
	case core.ActionCreatePR:
		j.logger.Info("creating pr index", "repo", event.RepoFullName, "pr", event.PRNumber)
		return j.manager.CreateNewPrIndex(ctx, pr)

	case core.ActionUpdatePR:
		j.logger.Info("updating pr index", "repo", event.RepoFullName, "pr", event.PRNumber)
		return j.manager.UpdatePrIndex(ctx, pr)

	case core.ActionClosed:
		return j.runClosed(ctx, event, pr)

	default:
		return fmt.Errorf("unhandled lifecycle action: %v", event.Action)
	}
}

// runClosed applies the PR's final diff to its base index when the PR was
// merged, then always cleans up its head index. Both steps are attempted
// even if the first fails, so a merge-apply failure never leaves an orphaned
// head index behind.
func (j *LifecycleJob) runClosed(ctx context.Context, event *core.LifecycleEvent, pr core.PRRef) error {
	var mergeErr error
	if event.Merged {
		j.logger.Info("pr merged, updating base index", "repo", event.RepoFullName, "pr", event.PRNumber, "base", event.BaseBranch)
		mergeErr = j.manager.UpdateBaseBranchIndex(ctx, pr)
		if mergeErr != nil {
			j.logger.Error("failed to update base index after merge", "repo", event.RepoFullName, "pr", event.PRNumber, "error", mergeErr)
		}
	}

	j.logger.Info("deleting pr index", "repo", event.RepoFullName, "pr", event.PRNumber)
	if err := j.manager.DeletePrIndex(ctx, pr); err != nil {
		return errors.Join(mergeErr, fmt.Errorf("delete pr index: %w", err))
	}
	return mergeErr
}

// validateInputs ensures the event contains all required fields.
func (j *LifecycleJob) validateInputs(event *core.LifecycleEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	switch {
	case event.RepoOwner == "":
		return errors.New("repository owner cannot be empty")
	case event.RepoName == "":
		return errors.New("repository name cannot be empty")
	case event.RepoFullName == "":
		return errors.New("repository full name cannot be empty")
	case event.PRNumber <= 0:
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	case event.HeadBranch == "":
		return errors.New("head branch cannot be empty")
	case event.BaseBranch == "":
		return errors.New("base branch cannot be empty")
	}
	return nil
}
