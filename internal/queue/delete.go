package queue

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/idisland/pkg/leaselock"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
)

// ProcessDeleteMessage removes a graph's snapshots, archive objects and job
// row. It waits for a running generation of the same graph to finish.
func (w *Worker) ProcessDeleteMessage(ctx context.Context, msg string) error {
	data, err := decode[DeleteJobMsg](msg)
	if err != nil {
		logger.Error("[Queue] Dropping malformed delete message", "err", err)
		return nil
	}
	if data.GraphID == "" {
		logger.Error("[Queue] Dropping delete message without graph id")
		return nil
	}

	return w.locks.WithLease(ctx, data.GraphID, leaselock.JobDelete, func(ctx context.Context) error {
		if err := w.store.DeleteGraph(ctx, data.GraphID); err != nil {
			return fmt.Errorf("failed to delete snapshots: %w", err)
		}
		if w.archive != nil {
			if err := w.archive.DeleteGraph(ctx, data.GraphID); err != nil {
				return fmt.Errorf("failed to delete archive: %w", err)
			}
		}
		rows, err := w.jobs.DeleteGraph(ctx, data.GraphID)
		if err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		logger.Info("[Queue] Deleted graph", "graph_id", data.GraphID, "correlation_id", data.CorrelationID, "rows", rows)
		return nil
	})
}
