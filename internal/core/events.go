// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"

	"github.com/google/go-github/v73/github"
)

// LifecycleAction identifies which Lifecycle Coordinator operation a webhook
// event should trigger.
type LifecycleAction int

const (
	ActionUnknown LifecycleAction = iota
	ActionCreatePR
	ActionUpdatePR
	ActionClosed
)

// LifecycleEvent represents a simplified, internal view of a GitHub webhook
// event that should drive RAG index lifecycle work. It acts as an
// anti-corruption layer between the GitHub wire format and the Lifecycle
// Coordinator, which only ever sees a PRRef.
type LifecycleEvent struct {
	Action LifecycleAction
	Merged bool // only meaningful when Action == ActionClosed

	RepoOwner      string
	RepoName       string
	RepoFullName   string
	InstallationID int64

	PRNumber      int
	HeadBranch    string
	BaseBranch    string
	DefaultBranch string
}

// PR projects the event into the PRRef the Lifecycle Coordinator consumes.
func (e *LifecycleEvent) PR() PRRef {
	return PRRef{
		RepoSlug:       e.RepoFullName,
		Number:         e.PRNumber,
		HeadBranch:     e.HeadBranch,
		BaseBranch:     e.BaseBranch,
		DefaultBranch:  e.DefaultBranch,
		InstallationID: e.InstallationID,
	}
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal LifecycleEvent representation. It ensures the
// incoming webhook payload is valid and contains all data needed before it's
// processed by a job, and classifies the webhook action into the lifecycle
// operation it should trigger.
func EventFromPullRequest(event *github.PullRequestEvent) (*LifecycleEvent, error) {
	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	pr := event.GetPullRequest()
	if pr == nil || pr.GetNumber() == 0 {
		return nil, fmt.Errorf("pull request information is missing from the event")
	}
	if pr.GetHead() == nil || pr.GetHead().GetRef() == "" || pr.GetBase() == nil || pr.GetBase().GetRef() == "" {
		return nil, fmt.Errorf("pull request is missing head or base branch information")
	}

	if event.GetInstallation() == nil || event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	action, err := actionFromWebhook(event)
	if err != nil {
		return nil, err
	}

	return &LifecycleEvent{
		Action:         action,
		Merged:         pr.GetMerged(),
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		InstallationID: event.GetInstallation().GetID(),
		PRNumber:       pr.GetNumber(),
		HeadBranch:     pr.GetHead().GetRef(),
		BaseBranch:     pr.GetBase().GetRef(),
		DefaultBranch:  repo.GetDefaultBranch(),
	}, nil
}

// actionFromWebhook maps a pull_request webhook action to a lifecycle
// operation. "opened"/"reopened" create a head index (cloning the base
// index first if needed); "synchronize" updates the head index; "closed"
// always deletes the head index and, when the PR was merged, also updates
// the base index with the PR's changes.
func actionFromWebhook(event *github.PullRequestEvent) (LifecycleAction, error) {
	switch event.GetAction() {
	case "opened", "reopened":
		return ActionCreatePR, nil
	case "synchronize":
		return ActionUpdatePR, nil
	case "closed":
		return ActionClosed, nil
	default:
		return ActionUnknown, fmt.Errorf("unhandled pull request action: %s", event.GetAction())
	}
}
