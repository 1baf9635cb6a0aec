package core

import "context"

// RAGBackend is the collaborator interface the RAG Index Manager consumes to
// persist and query indexed documents. Operation names are fixed bit-exact
// per §6 of the specification so that multiple client implementations can
// interoperate against the same backend contract. It is out of scope for the
// core itself; the concrete HTTP implementation lives in internal/ragclient.
type RAGBackend interface {
	// ListIndexes returns every index name currently known to the backend.
	ListIndexes(ctx context.Context) ([]string, error)

	// IndexDocuments creates new documents in index. Documents carry no
	// DocID; the backend assigns one to each.
	IndexDocuments(ctx context.Context, index string, docs []Document) error

	// ListDocuments returns documents in index matching a metadata filter.
	ListDocuments(ctx context.Context, index string, metadataFilter map[string]string) ([]Document, error)

	// UpdateDocuments replaces documents in index, identified by DocID.
	UpdateDocuments(ctx context.Context, index string, docs []Document) error

	// DeleteDocuments removes documents identified by doc ID from index.
	DeleteDocuments(ctx context.Context, index string, docIDs []string) error

	// DeleteIndex removes an index and all of its documents.
	DeleteIndex(ctx context.Context, index string) error

	// PersistIndex materializes a snapshot of index at a local path.
	PersistIndex(ctx context.Context, index, path string) error

	// LoadIndex loads a snapshot from path into index. If overwrite is true
	// and index already exists, it is replaced wholesale.
	LoadIndex(ctx context.Context, index, path string, overwrite bool) error

	// Query forwards a natural-language question against index and returns
	// the backend's generated response.
	Query(ctx context.Context, index, query string, params QueryParams) (*QueryResponse, error)
}
