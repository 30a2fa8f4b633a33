// Package services orchestrates uploads and analysis requests across the
// parser, the dataset store, the cache, and the AMQP event stream.
package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fincoach/internal/amqp"
	"fincoach/internal/core"
	applog "fincoach/internal/log"
	"fincoach/internal/source"
	"fincoach/internal/store"
)

// ErrNoTransactions is returned when a parsed upload contains no usable rows.
var ErrNoTransactions = errors.New("no valid transactions in upload")

// UploadResult describes a processed upload. Duplicate uploads are resolved
// to the already-stored dataset instead of being stored twice.
type UploadResult struct {
	DatasetID   string    `json:"file_id"`
	Filename    string    `json:"filename"`
	Rows        int       `json:"rows"`
	SkippedRows int       `json:"skipped_rows"`
	SHA256      string    `json:"sha256"`
	Duplicate   bool      `json:"is_duplicate"`
	UploadedAt  time.Time `json:"upload_time"`
}

// IngestService handles dataset uploads and lifecycle.
type IngestService struct {
	store      store.DatasetStore
	amqpClient *amqp.Client
}

func NewIngestService(store store.DatasetStore, amqpClient *amqp.Client) *IngestService {
	return &IngestService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Upload hashes, deduplicates, parses, and stores one CSV upload, then
// publishes an ingestion event. A byte-identical re-upload returns the
// existing dataset with Duplicate set instead of storing a second copy.
func (s *IngestService) Upload(ctx context.Context, filename string, data []byte) (UploadResult, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	existing, found, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		return UploadResult{}, fmt.Errorf("check duplicate: %w", err)
	}
	if found {
		slog.InfoContext(ctx, "Duplicate upload resolved to existing dataset",
			applog.FieldOperation, applog.OpUpload,
			applog.FieldDatasetID, existing.ID,
			applog.FieldFilename, filename,
			applog.FieldSHA256, hash)
		return UploadResult{
			DatasetID:  existing.ID,
			Filename:   existing.Filename,
			Rows:       existing.Rows,
			SHA256:     hash,
			Duplicate:  true,
			UploadedAt: existing.UploadedAt,
		}, nil
	}

	parsed, err := source.Parse(bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, fmt.Errorf("parse upload: %w", err)
	}
	if len(parsed.Transactions) == 0 {
		return UploadResult{}, ErrNoTransactions
	}

	dataset := core.Dataset{
		ID:           uuid.NewString(),
		Filename:     filename,
		SHA256:       hash,
		UploadedAt:   time.Now().UTC(),
		Transactions: parsed.Transactions,
	}
	if err := s.store.Save(ctx, dataset); err != nil {
		return UploadResult{}, fmt.Errorf("save dataset: %w", err)
	}

	if err := s.publishIngested(ctx, dataset); err != nil {
		slog.ErrorContext(ctx, "Failed to publish dataset event",
			"dataset_id", dataset.ID, "error", err)
		// Upload succeeded locally; the event stream is best effort
	}

	slog.InfoContext(ctx, "Dataset ingested",
		applog.FieldOperation, applog.OpUpload,
		applog.FieldDatasetID, dataset.ID,
		applog.FieldFilename, filename,
		applog.FieldRows, len(parsed.Transactions),
		"skipped_rows", parsed.SkippedRows)

	return UploadResult{
		DatasetID:   dataset.ID,
		Filename:    filename,
		Rows:        len(parsed.Transactions),
		SkippedRows: parsed.SkippedRows,
		SHA256:      hash,
		UploadedAt:  dataset.UploadedAt,
	}, nil
}

// Get returns a stored dataset with its rows.
func (s *IngestService) Get(ctx context.Context, id string) (core.Dataset, error) {
	return s.store.Get(ctx, id)
}

// List returns the stored datasets, newest first.
func (s *IngestService) List(ctx context.Context) ([]core.DatasetInfo, error) {
	return s.store.List(ctx)
}

// Delete removes a dataset and its rows.
func (s *IngestService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Dataset deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldDatasetID, id)
	return nil
}

func (s *IngestService) publishIngested(ctx context.Context, d core.Dataset) error {
	if s.amqpClient == nil {
		return nil
	}
	msg := amqp.NewDatasetIngestedMessage(d.ID, d.Filename, d.SHA256, len(d.Transactions))
	return s.amqpClient.PublishDatasetIngested(ctx, msg)
}

// Close closes the store and AMQP connections.
func (s *IngestService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ingest service: %v", errs)
	}
	return nil
}
