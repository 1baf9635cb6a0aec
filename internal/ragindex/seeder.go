package ragindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// seedIndex walks the recursive tree of pr's repository at the given branch,
// fetching, filtering, classifying, and bulk-indexing every surviving blob in
// fixed-size batches. A single blob's decode/fetch failure is logged and
// skipped; only the final flush's failure is fatal and aborts the seed.
func seedIndex(
	ctx context.Context,
	log *slog.Logger,
	provider core.GitProvider,
	backend core.RAGBackend,
	pr core.PRRef,
	branchSHA string,
	index string,
	cfg ManagerConfig,
) error {
	entries, err := provider.Tree(ctx, pr, branchSHA)
	if err != nil {
		return fmt.Errorf("get tree at %s: %w", branchSHA, core.ErrProviderUnavailable)
	}

	batch := make([]core.Document, 0, cfg.BatchSize)
	flush := func(final bool) error {
		if len(batch) == 0 {
			return nil
		}
		if err := backend.IndexDocuments(ctx, index, batch); err != nil {
			if final {
				return fmt.Errorf("final seed flush for %s: %w", index, core.ErrBackendFatal)
			}
			log.Warn("seed batch flush failed, dropping batch", "index", index, "batch_size", len(batch), "error", err)
		}
		batch = batch[:0]
		return nil
	}

	for _, entry := range entries {
		if Ignored(entry.Path, cfg.IgnoreDirectories) {
			continue
		}
		lang := Classify(entry.Path)
		if !cfg.allowsLanguage(lang) {
			continue
		}

		text, err := provider.Blob(ctx, pr, entry.BlobSHA)
		if err != nil {
			log.Warn("seed blob fetch/decode failed, skipping file", "path", entry.Path, "error", err)
			continue
		}

		batch = append(batch, core.Document{
			Text: text,
			Metadata: core.Metadata{
				FileName:  entry.Path,
				Language:  lang,
				SplitType: "code",
			},
		})

		if len(batch) >= cfg.BatchSize {
			if err := flush(false); err != nil {
				return err
			}
		}
	}

	return flush(true)
}
