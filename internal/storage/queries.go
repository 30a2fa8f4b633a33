package storage

import (
	"context"
	"database/sql"
	"time"

	"fincoach/internal/core"
)

// Queries wraps the raw SQL statements against an open database or
// transaction.
type Queries struct {
	db dbtx
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(db dbtx) *Queries {
	return &Queries{db: db}
}

const insertDataset = `
INSERT INTO datasets (id, filename, sha256, uploaded_at)
VALUES (?, ?, ?, ?)
`

func (q *Queries) InsertDataset(ctx context.Context, d core.Dataset) error {
	_, err := q.db.ExecContext(ctx, insertDataset, d.ID, d.Filename, d.SHA256, d.UploadedAt.UTC())
	return err
}

const insertTransaction = `
INSERT INTO transactions (dataset_id, tx_date, merchant, amount, category, confidence)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertTransaction(ctx context.Context, datasetID string, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		datasetID, t.Date.UTC(), t.Merchant, t.Amount, t.Category, t.Confidence)
	return err
}

const getDataset = `
SELECT id, filename, sha256, uploaded_at FROM datasets WHERE id = ?
`

func (q *Queries) GetDataset(ctx context.Context, id string) (core.Dataset, error) {
	var d core.Dataset
	var uploaded time.Time
	err := q.db.QueryRowContext(ctx, getDataset, id).
		Scan(&d.ID, &d.Filename, &d.SHA256, &uploaded)
	if err == sql.ErrNoRows {
		return core.Dataset{}, core.ErrDatasetNotFound
	}
	if err != nil {
		return core.Dataset{}, err
	}
	d.UploadedAt = uploaded
	return d, nil
}

const getTransactions = `
SELECT tx_date, merchant, amount, category, confidence
FROM transactions WHERE dataset_id = ? ORDER BY tx_date, id
`

func (q *Queries) GetTransactions(ctx context.Context, datasetID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, getTransactions, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.Date, &t.Merchant, &t.Amount, &t.Category, &t.Confidence); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const listDatasets = `
SELECT d.id, d.filename, d.sha256, d.uploaded_at, COUNT(t.id)
FROM datasets d
LEFT JOIN transactions t ON t.dataset_id = d.id
GROUP BY d.id
ORDER BY d.uploaded_at DESC, d.id
`

func (q *Queries) ListDatasets(ctx context.Context) ([]core.DatasetInfo, error) {
	rows, err := q.db.QueryContext(ctx, listDatasets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.DatasetInfo{}
	for rows.Next() {
		var info core.DatasetInfo
		if err := rows.Scan(&info.ID, &info.Filename, &info.SHA256, &info.UploadedAt, &info.Rows); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

const deleteDataset = `DELETE FROM datasets WHERE id = ?`

func (q *Queries) DeleteDataset(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteDataset, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const findDatasetByHash = `
SELECT d.id, d.filename, d.sha256, d.uploaded_at,
       (SELECT COUNT(*) FROM transactions t WHERE t.dataset_id = d.id)
FROM datasets d WHERE d.sha256 = ?
`

func (q *Queries) FindDatasetByHash(ctx context.Context, sha256 string) (core.DatasetInfo, error) {
	var info core.DatasetInfo
	err := q.db.QueryRowContext(ctx, findDatasetByHash, sha256).
		Scan(&info.ID, &info.Filename, &info.SHA256, &info.UploadedAt, &info.Rows)
	if err == sql.ErrNoRows {
		return core.DatasetInfo{}, core.ErrDatasetNotFound
	}
	return info, err
}
