package audit

import (
	"context"
	"log/slog"
	"time"
)

// Operation identifies which Lifecycle Coordinator call produced a Record.
type Operation string

const (
	OpCreateBase Operation = "create_base"
	OpUpdateBase Operation = "update_base"
	OpCreatePR   Operation = "create_pr"
	OpUpdatePR   Operation = "update_pr"
	OpDeletePR   Operation = "delete_pr"
	OpQuery      Operation = "query"
)

// Outcome classifies how an operation concluded.
type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeNoopPolicyBlocked Outcome = "noop_policy_blocked"
	OutcomeNoopEmptyPlan     Outcome = "noop_empty_plan"
	OutcomeError             Outcome = "error"
)

// Record is one row of the lifecycle_audit_log table.
type Record struct {
	ID           int64     `db:"id"`
	RepoFullName string    `db:"repo_full_name"`
	PRNumber     int       `db:"pr_number"`
	Operation    Operation `db:"operation"`
	IndexName    string    `db:"index_name"`
	Outcome      Outcome   `db:"outcome"`
	Detail       string    `db:"detail"`
	CreatedAt    time.Time `db:"created_at"`
}

// Store records Lifecycle Coordinator operations for operator visibility.
// It is intentionally best-effort: the core never depends on a Store read
// succeeding, and a Record failure must never fail the caller's operation.
//
//go:generate mockgen -destination=../../mocks/mock_audit_store.go -package=mocks github.com/sevigo/rag-index-manager/internal/audit Store
type Store interface {
	Record(ctx context.Context, rec Record) error
	ListForRepo(ctx context.Context, repoFullName string) ([]Record, error)
}

type postgresStore struct {
	db *DB
}

// NewStore wraps db as a Store.
func NewStore(db *DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Record(ctx context.Context, rec Record) error {
	const query = `
		INSERT INTO lifecycle_audit_log (repo_full_name, pr_number, operation, index_name, outcome, detail)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query, rec.RepoFullName, rec.PRNumber, rec.Operation, rec.IndexName, rec.Outcome, rec.Detail)
	return err
}

func (s *postgresStore) ListForRepo(ctx context.Context, repoFullName string) ([]Record, error) {
	const query = `
		SELECT id, repo_full_name, pr_number, operation, index_name, outcome, detail, created_at
		FROM lifecycle_audit_log
		WHERE repo_full_name = $1
		ORDER BY created_at DESC`
	var records []Record
	if err := s.db.SelectContext(ctx, &records, query, repoFullName); err != nil {
		return nil, err
	}
	return records, nil
}

// LoggingRecorder wraps a Store so that a Record failure is logged and
// swallowed rather than surfaced to the Lifecycle Coordinator.
type LoggingRecorder struct {
	store  Store
	logger *slog.Logger
}

// NewLoggingRecorder builds a best-effort recorder. A nil store is valid and
// makes every Record call a no-op, letting a deployment run without the
// audit database at all.
func NewLoggingRecorder(store Store, logger *slog.Logger) *LoggingRecorder {
	if logger == nil {
		panic("audit: NewLoggingRecorder requires a non-nil logger")
	}
	return &LoggingRecorder{store: store, logger: logger}
}

// Record satisfies ragindex.Recorder: it is shaped as a flat, stringly-typed
// method so the Lifecycle Coordinator package does not need to import this
// one. A nil store makes this a silent no-op.
func (r *LoggingRecorder) Record(ctx context.Context, repoFullName string, prNumber int, operation, indexName, outcome, detail string) {
	if r == nil || r.store == nil {
		return
	}
	rec := Record{
		RepoFullName: repoFullName,
		PRNumber:     prNumber,
		Operation:    Operation(operation),
		IndexName:    indexName,
		Outcome:      Outcome(outcome),
		Detail:       detail,
	}
	if err := r.store.Record(ctx, rec); err != nil {
		r.logger.Warn("failed to write lifecycle audit record", "repo", rec.RepoFullName, "operation", rec.Operation, "error", err)
	}
}
