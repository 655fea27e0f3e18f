package repository

import (
	"context"
	"database/sql"
	"fmt"

	"draftforge/internal/model"
)

// LedgerRepository persists batch and page processing status. Table names
// come from configuration; defaults match db/schema.sql.
type LedgerRepository struct {
	db         *sql.DB
	batchTable string
	pageTable  string
}

func NewLedgerRepository(db *sql.DB, batchTable, pageTable string) *LedgerRepository {
	if batchTable == "" {
		batchTable = "batch_log"
	}
	if pageTable == "" {
		pageTable = "page_status"
	}
	return &LedgerRepository{db: db, batchTable: batchTable, pageTable: pageTable}
}

// LogBatchStart appends a "started" row for the batch. Deliberately an
// append, not an upsert: re-running a batch leaves a visible trail of runs.
func (r *LedgerRepository) LogBatchStart(ctx context.Context, batchNumber int) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s(batch_number, status) VALUES($1, $2)
	`, r.batchTable), batchNumber, model.PageStatusStarted)
	return err
}

// LogPageStatus upserts the status row keyed by (batch_number, page_number).
// Last write wins; the ON CONFLICT clause keeps concurrent writers from
// producing duplicate rows.
func (r *LedgerRepository) LogPageStatus(ctx context.Context, batchNumber, pageNumber int, status string) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s(batch_number, page_number, status, updated_at)
		VALUES($1, $2, $3, now())
		ON CONFLICT (batch_number, page_number)
		DO UPDATE SET status = EXCLUDED.status, updated_at = now()
	`, r.pageTable), batchNumber, pageNumber, status)
	return err
}

// FindIncompletePages returns page numbers grouped by batch for every page
// whose latest status is not "done".
func (r *LedgerRepository) FindIncompletePages(ctx context.Context) (map[int][]int, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT batch_number, page_number
		FROM %s
		WHERE status <> $1
		ORDER BY batch_number, page_number
	`, r.pageTable), model.PageStatusDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomplete := make(map[int][]int)
	for rows.Next() {
		var batchNumber, pageNumber int
		if err := rows.Scan(&batchNumber, &pageNumber); err != nil {
			return nil, err
		}
		incomplete[batchNumber] = append(incomplete[batchNumber], pageNumber)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return incomplete, nil
}

// BatchRuns returns the batch's append-only run history, newest first. One
// row per time the batch was started.
func (r *LedgerRepository) BatchRuns(ctx context.Context, batchNumber int) ([]model.BatchLog, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, batch_number, status, created_at
		FROM %s
		WHERE batch_number = $1
		ORDER BY created_at DESC
	`, r.batchTable), batchNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.BatchLog
	for rows.Next() {
		var run model.BatchLog
		if err := rows.Scan(&run.ID, &run.BatchNumber, &run.Status, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// PageStatuses returns every ledger row for one batch, newest first.
func (r *LedgerRepository) PageStatuses(ctx context.Context, batchNumber int) ([]model.PageStatus, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT batch_number, page_number, status, updated_at
		FROM %s
		WHERE batch_number = $1
		ORDER BY updated_at DESC
	`, r.pageTable), batchNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []model.PageStatus
	for rows.Next() {
		var s model.PageStatus
		if err := rows.Scan(&s.BatchNumber, &s.PageNumber, &s.Status, &s.UpdatedAt); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return statuses, nil
}
