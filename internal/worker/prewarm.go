package worker

import (
	"context"
	"errors"
	"time"

	"fincoach/internal/amqp"
	"fincoach/internal/core"
	applog "fincoach/internal/log"
	"fincoach/internal/services"
)

// defaultThreshold matches the detection threshold the API uses when the
// caller does not pass one, so warmed entries are the ones actually served.
const defaultThreshold = 0.5

// PrewarmWorker computes the common analysis views of a freshly ingested
// dataset so the first interactive request hits the cache.
type PrewarmWorker struct {
	analysis *services.AnalysisService
	logger   *applog.Logger
	timeout  time.Duration
}

// NewPrewarmWorker creates a worker bound to an analysis service.
func NewPrewarmWorker(analysis *services.AnalysisService, logger *applog.Logger) *PrewarmWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &PrewarmWorker{
		analysis: analysis,
		logger:   logger.WithComponent(applog.ComponentWorker),
		timeout:  2 * time.Minute,
	}
}

// HandleDatasetIngested warms the aggregation, subscription, and profile
// caches for the dataset named in the message. A dataset deleted between
// publish and consume is not an error.
func (w *PrewarmWorker) HandleDatasetIngested(msg *amqp.DatasetIngestedMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	w.logger.InfoContext(ctx, "Prewarming dataset analyses",
		applog.FieldDatasetID, msg.DatasetID, applog.FieldRows, msg.Rows)

	if err := w.prewarm(ctx, msg.DatasetID); err != nil {
		if errors.Is(err, core.ErrDatasetNotFound) {
			w.logger.WarnContext(ctx, "Dataset vanished before prewarm",
				applog.FieldDatasetID, msg.DatasetID)
			return nil
		}
		w.logger.ErrorContext(ctx, "Prewarm failed",
			"error", err, applog.FieldDatasetID, msg.DatasetID)
		return err
	}

	w.logger.InfoContext(ctx, "Prewarm complete",
		applog.FieldDatasetID, msg.DatasetID,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *PrewarmWorker) prewarm(ctx context.Context, datasetID string) error {
	windows := []core.Window{core.WindowAll, core.Window30Days, core.Window90Days}
	for _, window := range windows {
		if _, err := w.analysis.Aggregation(ctx, datasetID, window, nil); err != nil {
			return err
		}
	}

	if _, err := w.analysis.Subscriptions(ctx, datasetID, defaultThreshold); err != nil {
		return err
	}

	if _, err := w.analysis.Profile(ctx, datasetID); err != nil {
		return err
	}

	return nil
}
