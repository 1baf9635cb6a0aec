package ragindex

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// cloneIndex produces head index H from base index B by persisting a
// snapshot of B to a temp path and loading it into H with overwrite=true,
// replacing any stale head index of the same name wholesale.
func cloneIndex(ctx context.Context, backend core.RAGBackend, tempRoot, base, head string) error {
	snapshotPath := filepath.Join(tempRoot, base)

	if err := backend.PersistIndex(ctx, base, snapshotPath); err != nil {
		return fmt.Errorf("persist base index %q: %w", base, core.ErrBackendFatal)
	}
	if err := backend.LoadIndex(ctx, head, snapshotPath, true); err != nil {
		return fmt.Errorf("load head index %q from %q: %w", head, base, core.ErrBackendFatal)
	}
	return nil
}
