package ragindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// planDocuments runs the three-pass Diff Planner algorithm: filter changes by
// ignore/language gates, probe the backend for each surviving file's current
// document, then emit a disjoint create/update/delete plan.
func planDocuments(
	ctx context.Context,
	log *slog.Logger,
	backend core.RAGBackend,
	index string,
	changes []core.FileChange,
	cfg ManagerConfig,
) (core.Plan, error) {
	var plan core.Plan

	// Pass 1: filter.
	kept := make([]core.FileChange, 0, len(changes))
	for _, f := range changes {
		if Ignored(f.Filename, cfg.IgnoreDirectories) {
			continue
		}
		lang := Classify(f.Filename)
		if !cfg.allowsLanguage(lang) {
			continue
		}
		kept = append(kept, f)
	}

	// Pass 2: existence probe.
	current := make(map[string]core.Document, len(kept))
	for _, f := range kept {
		key := f.Filename
		if f.EditType == core.EditRenamed && f.OldFilename != "" {
			key = f.OldFilename
		}
		if _, ok := current[key]; ok {
			continue
		}
		docs, err := backend.ListDocuments(ctx, index, map[string]string{"file_name": key})
		if err != nil {
			return core.Plan{}, fmt.Errorf("list documents for %q: %w", key, core.ErrBackendFatal)
		}
		if len(docs) > 0 {
			current[key] = docs[0]
		}
	}

	// Pass 3: plan.
	for _, f := range kept {
		key := f.Filename
		if f.EditType == core.EditRenamed && f.OldFilename != "" {
			key = f.OldFilename
		}
		doc, exists := current[key]

		switch {
		case f.EditType == core.EditDeleted && !exists:
			continue
		case f.EditType == core.EditAdded || !exists:
			lang := Classify(f.Filename)
			meta := core.Metadata{FileName: f.Filename}
			if cfg.allowsLanguage(lang) {
				meta.Language = lang
				meta.SplitType = "code"
			}
			plan.Creates = append(plan.Creates, core.Document{
				Text:     f.HeadContent,
				Metadata: meta,
			})
		case f.EditType == core.EditDeleted:
			plan.Deletes = append(plan.Deletes, doc)
		case f.EditType == core.EditModified:
			doc.Text = f.HeadContent
			plan.Updates = append(plan.Updates, doc)
		case f.EditType == core.EditRenamed:
			doc.Text = f.HeadContent
			doc.Metadata.FileName = f.Filename
			plan.Updates = append(plan.Updates, doc)
		default:
			log.Warn("diff planner skipping file with unknown edit type", "file", f.Filename)
		}
	}

	return plan, nil
}

// applyPlan issues delete, then update, then create calls against index, in
// that fixed order.
func applyPlan(ctx context.Context, backend core.RAGBackend, index string, plan core.Plan) error {
	if len(plan.Deletes) > 0 {
		ids := make([]string, 0, len(plan.Deletes))
		for _, d := range plan.Deletes {
			if d.DocID != "" {
				ids = append(ids, d.DocID)
			}
		}
		if len(ids) > 0 {
			if err := backend.DeleteDocuments(ctx, index, ids); err != nil {
				return fmt.Errorf("delete documents: %w", core.ErrBackendFatal)
			}
		}
	}
	if len(plan.Updates) > 0 {
		if err := backend.UpdateDocuments(ctx, index, plan.Updates); err != nil {
			return fmt.Errorf("update documents: %w", core.ErrBackendFatal)
		}
	}
	if len(plan.Creates) > 0 {
		if err := backend.IndexDocuments(ctx, index, plan.Creates); err != nil {
			return fmt.Errorf("index documents: %w", core.ErrBackendFatal)
		}
	}
	return nil
}
