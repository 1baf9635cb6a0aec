package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/rag-index-manager/internal/core"
)

type fakeManager struct {
	createPrCalls  int
	updatePrCalls  int
	updateBaseCall int
	deletePrCalls  int

	updateBaseErr error
	deletePrErr   error
}

func (f *fakeManager) CreateNewPrIndex(ctx context.Context, pr core.PRRef) error {
	f.createPrCalls++
	return nil
}

func (f *fakeManager) UpdatePrIndex(ctx context.Context, pr core.PRRef) error {
	f.updatePrCalls++
	return nil
}

func (f *fakeManager) UpdateBaseBranchIndex(ctx context.Context, pr core.PRRef) error {
	f.updateBaseCall++
	return f.updateBaseErr
}

func (f *fakeManager) DeletePrIndex(ctx context.Context, pr core.PRRef) error {
	f.deletePrCalls++
	return f.deletePrErr
}

func testJobLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func baseEvent(action core.LifecycleAction) *core.LifecycleEvent {
	return &core.LifecycleEvent{
		Action:       action,
		RepoOwner:    "owner",
		RepoName:     "repo",
		RepoFullName: "owner/repo",
		PRNumber:     1,
		HeadBranch:   "feature/x",
		BaseBranch:   "main",
	}
}

func TestLifecycleJobCreatePR(t *testing.T) {
	m := &fakeManager{}
	job := NewLifecycleJob(m, testJobLogger())

	require.NoError(t, job.Run(context.Background(), baseEvent(core.ActionCreatePR)))
	assert.Equal(t, 1, m.createPrCalls)
}

func TestLifecycleJobUpdatePR(t *testing.T) {
	m := &fakeManager{}
	job := NewLifecycleJob(m, testJobLogger())

	require.NoError(t, job.Run(context.Background(), baseEvent(core.ActionUpdatePR)))
	assert.Equal(t, 1, m.updatePrCalls)
}

func TestLifecycleJobClosedUnmergedOnlyDeletes(t *testing.T) {
	m := &fakeManager{}
	job := NewLifecycleJob(m, testJobLogger())

	event := baseEvent(core.ActionClosed)
	event.Merged = false
	require.NoError(t, job.Run(context.Background(), event))

	assert.Equal(t, 0, m.updateBaseCall)
	assert.Equal(t, 1, m.deletePrCalls)
}

func TestLifecycleJobClosedMergedUpdatesThenDeletes(t *testing.T) {
	m := &fakeManager{}
	job := NewLifecycleJob(m, testJobLogger())

	event := baseEvent(core.ActionClosed)
	event.Merged = true
	require.NoError(t, job.Run(context.Background(), event))

	assert.Equal(t, 1, m.updateBaseCall)
	assert.Equal(t, 1, m.deletePrCalls)
}

func TestLifecycleJobClosedDeletesEvenIfMergeUpdateFails(t *testing.T) {
	m := &fakeManager{updateBaseErr: errors.New("backend down")}
	job := NewLifecycleJob(m, testJobLogger())

	event := baseEvent(core.ActionClosed)
	event.Merged = true
	err := job.Run(context.Background(), event)

	require.Error(t, err)
	assert.Equal(t, 1, m.updateBaseCall)
	assert.Equal(t, 1, m.deletePrCalls)
}

func TestLifecycleJobRejectsInvalidEvent(t *testing.T) {
	m := &fakeManager{}
	job := NewLifecycleJob(m, testJobLogger())

	event := baseEvent(core.ActionCreatePR)
	event.PRNumber = 0
	err := job.Run(context.Background(), event)
	require.Error(t, err)
	assert.Equal(t, 0, m.createPrCalls)
}
