package ragindex

import (
	"context"
	"fmt"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// Default generation parameters, preserved from the original source's query
// defaults.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
	defaultTopK        = 5
)

// QueryDispatcher is a thin façade over Manager exposing only Query,
// letting a deployment run with no write credentials to the RAG backend.
type QueryDispatcher struct {
	manager *Manager
}

// NewQueryDispatcher wraps manager in a read-only façade.
func NewQueryDispatcher(manager *Manager) *QueryDispatcher {
	return &QueryDispatcher{manager: manager}
}

// Query validates that pr's head index exists, applies the original
// source's generation defaults to any zero-valued params, forwards the
// question to the RAG backend, and returns its response verbatim.
func (q *QueryDispatcher) Query(ctx context.Context, pr core.PRRef, question string, params core.QueryParams) (*core.QueryResponse, error) {
	return q.manager.Query(ctx, pr, question, params)
}

// Query is also exposed directly on Manager (§4.7 separates the dispatcher
// only to permit a reduced-credential deployment; the logic itself lives
// here once).
func (m *Manager) Query(ctx context.Context, pr core.PRRef, question string, params core.QueryParams) (*core.QueryResponse, error) {
	head := IndexName(pr.RepoSlug, pr.HeadBranch)
	exists, err := m.indexExists(ctx, head)
	if err != nil {
		return nil, err
	}
	if !exists {
		err := fmt.Errorf("index %q: %w", head, core.ErrIndexMissing)
		m.recordOutcome(ctx, pr, "query", head, err)
		return nil, err
	}

	if params.Temperature == 0 {
		params.Temperature = defaultTemperature
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = defaultMaxTokens
	}
	if params.TopK == 0 {
		params.TopK = defaultTopK
	}
	params.MaxTokens += m.cfg.QueryTokenBuffer

	resp, err := m.backend.Query(ctx, head, question, params)
	if err != nil {
		err = fmt.Errorf("query index %q: %w", head, core.ErrBackendFatal)
		m.recordOutcome(ctx, pr, "query", head, err)
		return nil, err
	}
	m.recordOutcome(ctx, pr, "query", head, nil)
	return resp, nil
}
