package ragclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/rag-index-manager/internal/core"
)

func TestClientIndexDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes/owner_repo_main/documents", r.URL.Path)
		var body struct {
			Documents []core.Document `json:"documents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Documents, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	err := client.IndexDocuments(context.Background(), "owner_repo_main", []core.Document{
		{Text: "hi", Metadata: core.Metadata{FileName: "a.py"}},
	})
	require.NoError(t, err)
}

func TestClientListIndexes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"indexes": []string{"a", "b"}})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	names, err := client.ListIndexes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestClientClientErrorMapsToBackendFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	err := client.DeleteIndex(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBackendFatal)
}
