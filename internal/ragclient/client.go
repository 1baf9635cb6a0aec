// Package ragclient implements core.RAGBackend as a thin HTTP client against
// the RAG backend's REST API.
package ragclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// Client is a net/http-backed implementation of core.RAGBackend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client against baseURL. A nil httpClient defaults to
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, core.ErrBackendTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s %s returned %d: %w", method, path, resp.StatusCode, core.ErrBackendTransient)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned %d: %w", method, path, resp.StatusCode, core.ErrBackendFatal)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s %s: %w", method, path, core.ErrBackendFatal)
		}
	}
	return nil
}

func (c *Client) ListIndexes(ctx context.Context) ([]string, error) {
	var out struct {
		Indexes []string `json:"indexes"`
	}
	if err := c.do(ctx, http.MethodGet, "/indexes", nil, &out); err != nil {
		return nil, err
	}
	return out.Indexes, nil
}

func (c *Client) IndexDocuments(ctx context.Context, index string, docs []core.Document) error {
	body := struct {
		Documents []core.Document `json:"documents"`
	}{Documents: docs}
	return c.do(ctx, http.MethodPost, "/indexes/"+url.PathEscape(index)+"/documents", body, nil)
}

func (c *Client) ListDocuments(ctx context.Context, index string, metadataFilter map[string]string) ([]core.Document, error) {
	q := url.Values{}
	for k, v := range metadataFilter {
		q.Set("metadata."+k, v)
	}
	var out struct {
		Documents []core.Document `json:"documents"`
	}
	path := "/indexes/" + url.PathEscape(index) + "/documents"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *Client) UpdateDocuments(ctx context.Context, index string, docs []core.Document) error {
	body := struct {
		Documents []core.Document `json:"documents"`
	}{Documents: docs}
	return c.do(ctx, http.MethodPut, "/indexes/"+url.PathEscape(index)+"/documents", body, nil)
}

func (c *Client) DeleteDocuments(ctx context.Context, index string, docIDs []string) error {
	body := struct {
		DocIDs []string `json:"doc_ids"`
	}{DocIDs: docIDs}
	return c.do(ctx, http.MethodDelete, "/indexes/"+url.PathEscape(index)+"/documents", body, nil)
}

func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	return c.do(ctx, http.MethodDelete, "/indexes/"+url.PathEscape(index), nil, nil)
}

func (c *Client) PersistIndex(ctx context.Context, index, path string) error {
	body := struct {
		Path string `json:"path"`
	}{Path: path}
	return c.do(ctx, http.MethodPost, "/indexes/"+url.PathEscape(index)+"/persist", body, nil)
}

func (c *Client) LoadIndex(ctx context.Context, index, path string, overwrite bool) error {
	body := struct {
		Path      string `json:"path"`
		Overwrite bool   `json:"overwrite"`
	}{Path: path, Overwrite: overwrite}
	return c.do(ctx, http.MethodPost, "/indexes/"+url.PathEscape(index)+"/load", body, nil)
}

func (c *Client) Query(ctx context.Context, index, query string, params core.QueryParams) (*core.QueryResponse, error) {
	body := struct {
		Query       string  `json:"query"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		TopK        int     `json:"top_k"`
	}{Query: query, Temperature: params.Temperature, MaxTokens: params.MaxTokens, TopK: params.TopK}

	var out core.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/indexes/"+url.PathEscape(index)+"/query", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ core.RAGBackend = (*Client)(nil)
