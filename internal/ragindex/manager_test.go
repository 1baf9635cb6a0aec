package ragindex

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// fakeProvider is a minimal in-memory core.GitProvider for Manager tests.
type fakeProvider struct {
	defaultBranch string
	heads         map[string]string // branch -> sha
	trees         map[string][]core.TreeEntry
	blobs         map[string]string // blobSHA -> base64 content
	diffs         map[int][]core.FileChange

	seedCalls atomic.Int32
}

func (p *fakeProvider) RepoSlug(ctx context.Context, pr core.PRRef) (string, error) {
	return pr.RepoSlug, nil
}

func (p *fakeProvider) DefaultBranch(ctx context.Context, pr core.PRRef) (string, error) {
	return p.defaultBranch, nil
}

func (p *fakeProvider) BranchHeadSHA(ctx context.Context, pr core.PRRef, branch string) (string, error) {
	sha, ok := p.heads[branch]
	if !ok {
		return "", errors.New("branch not found")
	}
	return sha, nil
}

func (p *fakeProvider) Tree(ctx context.Context, pr core.PRRef, sha string) ([]core.TreeEntry, error) {
	p.seedCalls.Add(1)
	return p.trees[sha], nil
}

func (p *fakeProvider) Blob(ctx context.Context, pr core.PRRef, blobSHA string) (string, error) {
	encoded, ok := p.blobs[blobSHA]
	if !ok {
		return "", errors.New("blob not found")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", core.ErrDecodeFailure
	}
	return string(raw), nil
}

func (p *fakeProvider) DiffFiles(ctx context.Context, pr core.PRRef) ([]core.FileChange, error) {
	return p.diffs[pr.Number], nil
}

func newManager(t *testing.T, backend core.RAGBackend, provider core.GitProvider, cfg ManagerConfig) *Manager {
	t.Helper()
	resolve := func(ctx context.Context, pr core.PRRef) (core.GitProvider, error) {
		return provider, nil
	}
	return NewManager(testLogger(), backend, resolve, cfg)
}

func TestCreateBaseBranchIndexSeedsFromScratch(t *testing.T) {
	backend := newFakeBackend()
	content := base64.StdEncoding.EncodeToString([]byte("print('hello world')"))
	provider := &fakeProvider{
		defaultBranch: "main",
		heads:         map[string]string{"main": "sha1"},
		trees: map[string][]core.TreeEntry{
			"sha1": {{Path: "test_file.py", BlobSHA: "blob1"}},
		},
		blobs: map[string]string{"blob1": content},
	}
	cfg := DefaultManagerConfig()
	m := newManager(t, backend, provider, cfg)

	pr := core.PRRef{RepoSlug: "owner/repo", Number: 1, BaseBranch: "main"}
	require.NoError(t, m.CreateBaseBranchIndex(context.Background(), pr))

	docs := backend.indexes["owner_repo_main"]
	require.Len(t, docs, 1)
	assert.Equal(t, "test_file.py", docs[0].Metadata.FileName)
	assert.Equal(t, "python", docs[0].Metadata.Language)
	assert.Equal(t, "code", docs[0].Metadata.SplitType)
	assert.Equal(t, "print('hello world')", docs[0].Text)
}

func TestCreateNewPrIndexClonesThenApplies(t *testing.T) {
	backend := newFakeBackend()
	backend.indexes["owner_repo_main"] = []core.Document{
		{DocID: "1", Text: "old", Metadata: core.Metadata{FileName: "test_file.py", Language: "python", SplitType: "code"}},
	}
	provider := &fakeProvider{
		defaultBranch: "main",
		heads:         map[string]string{"main": "sha1"},
		diffs: map[int][]core.FileChange{
			1: {{Filename: "test_file.py", EditType: core.EditModified, HeadContent: "print('hello world')"}},
		},
	}
	cfg := DefaultManagerConfig()
	m := newManager(t, backend, provider, cfg)

	pr := core.PRRef{RepoSlug: "owner/repo", Number: 1, BaseBranch: "main", HeadBranch: "feature/test"}
	require.NoError(t, m.CreateNewPrIndex(context.Background(), pr))

	headDocs := backend.indexes["owner_repo_feature_test"]
	require.Len(t, headDocs, 1)
	assert.Equal(t, "print('hello world')", headDocs[0].Text)
	assert.Equal(t, "python", headDocs[0].Metadata.Language)
}

func TestPolicyBlockSkipsAllBackendCalls(t *testing.T) {
	backend := newFakeBackend()
	provider := &fakeProvider{defaultBranch: "main"}
	cfg := DefaultManagerConfig() // enabled: {"main"}
	m := newManager(t, backend, provider, cfg)

	pr := core.PRRef{RepoSlug: "owner/repo", Number: 1, BaseBranch: "release", HeadBranch: "feature/x"}
	require.NoError(t, m.CreateNewPrIndex(context.Background(), pr))

	assert.Empty(t, backend.indexes)
	assert.Empty(t, backend.calls)
}

func TestDeletePrIndexCleanup(t *testing.T) {
	backend := newFakeBackend()
	backend.indexes["owner_repo_feature_test"] = []core.Document{{DocID: "1"}}
	provider := &fakeProvider{}
	m := newManager(t, backend, provider, DefaultManagerConfig())

	pr := core.PRRef{RepoSlug: "owner/repo", HeadBranch: "feature/test"}
	require.NoError(t, m.DeletePrIndex(context.Background(), pr))

	_, exists := backend.indexes["owner_repo_feature_test"]
	assert.False(t, exists)
}

func TestDeletePrIndexNotGatedByPolicy(t *testing.T) {
	backend := newFakeBackend()
	backend.indexes["owner_repo_feature_x"] = []core.Document{{DocID: "1"}}
	provider := &fakeProvider{}
	m := newManager(t, backend, provider, DefaultManagerConfig())

	// BaseBranch "release" is not in the enabled set, but delete must still
	// proceed: cleanup has no policy gate.
	pr := core.PRRef{RepoSlug: "owner/repo", BaseBranch: "release", HeadBranch: "feature/x"}
	require.NoError(t, m.DeletePrIndex(context.Background(), pr))

	_, exists := backend.indexes["owner_repo_feature_x"]
	assert.False(t, exists)
}

func TestConcurrentCreateBaseBranchIndexSeedsExactlyOnce(t *testing.T) {
	backend := newFakeBackend()
	content := base64.StdEncoding.EncodeToString([]byte("x = 1"))
	provider := &fakeProvider{
		defaultBranch: "main",
		heads:         map[string]string{"main": "sha1"},
		trees: map[string][]core.TreeEntry{
			"sha1": {{Path: "a.py", BlobSHA: "blob1"}},
		},
		blobs: map[string]string{"blob1": content},
	}
	m := newManager(t, backend, provider, DefaultManagerConfig())

	pr := core.PRRef{RepoSlug: "owner/repo", BaseBranch: "main"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.CreateBaseBranchIndex(context.Background(), pr)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, provider.seedCalls.Load())
}

func TestQueryRequiresExistingIndex(t *testing.T) {
	backend := newFakeBackend()
	provider := &fakeProvider{}
	m := newManager(t, backend, provider, DefaultManagerConfig())

	pr := core.PRRef{RepoSlug: "owner/repo", HeadBranch: "feature/test"}
	_, err := m.Query(context.Background(), pr, "what does this do?", core.QueryParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIndexMissing)
}

func TestQueryAppliesDefaultsAndTokenBuffer(t *testing.T) {
	backend := newFakeBackend()
	backend.indexes["owner_repo_feature_test"] = nil
	provider := &fakeProvider{}
	m := newManager(t, backend, provider, DefaultManagerConfig())

	pr := core.PRRef{RepoSlug: "owner/repo", HeadBranch: "feature/test"}
	resp, err := m.Query(context.Background(), pr, "what does this do?", core.QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, "stub", resp.Response)
	assert.Equal(t, 0.7, backend.lastQuery.Temperature)
	assert.Equal(t, 5, backend.lastQuery.TopK)
	assert.Equal(t, 1000+2500, backend.lastQuery.MaxTokens)
}

type fakeRecorder struct {
	outcomes []string
}

func (r *fakeRecorder) Record(ctx context.Context, repoFullName string, prNumber int, operation, indexName, outcome, detail string) {
	r.outcomes = append(r.outcomes, operation+":"+outcome)
}

func TestManagerRecordsPolicyBlockedOutcome(t *testing.T) {
	backend := newFakeBackend()
	provider := &fakeProvider{}
	m := newManager(t, backend, provider, DefaultManagerConfig())
	rec := &fakeRecorder{}
	m.WithRecorder(rec)

	pr := core.PRRef{RepoSlug: "owner/repo", BaseBranch: "release", HeadBranch: "feature/x"}
	require.NoError(t, m.CreateNewPrIndex(context.Background(), pr))

	assert.Contains(t, rec.outcomes, "create_pr:noop_policy_blocked")
}

func TestManagerRecordsDeleteOutcome(t *testing.T) {
	backend := newFakeBackend()
	backend.indexes["owner_repo_feature_test"] = []core.Document{{DocID: "1"}}
	provider := &fakeProvider{}
	m := newManager(t, backend, provider, DefaultManagerConfig())
	rec := &fakeRecorder{}
	m.WithRecorder(rec)

	pr := core.PRRef{RepoSlug: "owner/repo", HeadBranch: "feature/test"}
	require.NoError(t, m.DeletePrIndex(context.Background(), pr))

	assert.Contains(t, rec.outcomes, "delete_pr:applied")
}
