// Package storage is the SQLite dataset store. Uploads land in a datasets
// row plus one transactions row per parsed line, inside a single transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fincoach/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements store.DatasetStore.
func (r *SQLiteRepository) Save(ctx context.Context, d core.Dataset) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer sqlTx.Rollback()

	q := New(sqlTx)
	if err := q.InsertDataset(ctx, d); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	for _, t := range d.Transactions {
		if err := q.InsertTransaction(ctx, d.ID, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.InfoContext(ctx, "Dataset saved to SQLite",
		"id", d.ID,
		"filename", d.Filename,
		"rows", len(d.Transactions))
	return nil
}

// Get implements store.DatasetStore.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Dataset, error) {
	d, err := r.queries.GetDataset(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrDatasetNotFound) {
			return core.Dataset{}, err
		}
		return core.Dataset{}, fmt.Errorf("get dataset: %w", err)
	}

	d.Transactions, err = r.queries.GetTransactions(ctx, id)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("get transactions: %w", err)
	}
	return d, nil
}

// List implements store.DatasetStore.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.DatasetInfo, error) {
	infos, err := r.queries.ListDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return infos, nil
}

// Delete implements store.DatasetStore. Transactions go with the dataset via
// the cascade.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteDataset(ctx, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if affected == 0 {
		return core.ErrDatasetNotFound
	}

	slog.InfoContext(ctx, "Dataset deleted", "id", id)
	return nil
}

// FindByHash implements store.DatasetStore.
func (r *SQLiteRepository) FindByHash(ctx context.Context, sha256 string) (core.DatasetInfo, bool, error) {
	info, err := r.queries.FindDatasetByHash(ctx, sha256)
	if errors.Is(err, core.ErrDatasetNotFound) {
		return core.DatasetInfo{}, false, nil
	}
	if err != nil {
		return core.DatasetInfo{}, false, fmt.Errorf("find dataset by hash: %w", err)
	}
	return info, true, nil
}
