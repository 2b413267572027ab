package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/timing"
	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/graph"
	"github.com/OFFIS-RIT/idisland/pkg/leaselock"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

// ProcessGenerateMessage runs one generation job under the graph's lease.
//
// Invalid jobs and generation failures are recorded on the job and
// acknowledged, since a deterministic run fails the same way again. Storage
// failures are returned so the message is retried.
func (w *Worker) ProcessGenerateMessage(ctx context.Context, msg string) error {
	data, err := decode[GenerateJobMsg](msg)
	if err != nil {
		logger.Error("[Queue] Dropping malformed generate message", "err", err)
		return nil
	}

	params, err := data.RunParams()
	if err != nil {
		logger.Error("[Queue] Invalid generate job", "graph_id", data.GraphID, "err", err)
		if data.GraphID != "" {
			return w.markFailed(ctx, data.GraphID, util.JobPending, err)
		}
		return nil
	}
	params.Generator.Provider = w.names

	return w.locks.WithLease(ctx, data.GraphID, leaselock.JobGenerate, func(ctx context.Context) error {
		return w.generate(ctx, data, params)
	})
}

func (w *Worker) generate(ctx context.Context, data GenerateJobMsg, params graph.RunParams) error {
	job, err := w.jobs.GetGraph(ctx, data.GraphID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", data.GraphID, err)
	}
	if util.JobStatus(job.Status) == util.JobCompleted {
		logger.Info("[Queue] Job already completed", "graph_id", data.GraphID, "correlation_id", data.CorrelationID)
		return nil
	}

	if err := w.setStatus(ctx, data.GraphID, util.JobGenerating); err != nil {
		return err
	}

	start := time.Now()
	result, err := graph.Run(params)
	if err != nil {
		w.metrics.ObserveStage(timing.StageGenerate, time.Since(start))
		logger.Error("[Queue] Generation failed", "graph_id", data.GraphID, "err", err)
		w.metrics.RunFailed()
		return w.markFailed(ctx, data.GraphID, util.JobGenerating, err)
	}
	logger.Info(
		"[Queue] Generated graph",
		"graph_id", data.GraphID,
		"correlation_id", data.CorrelationID,
		"nodes", len(result.Anomalous.Nodes),
		"edges", len(result.Anomalous.Edges),
		"anomalies", len(result.Labels),
	)
	w.recordTime(ctx, data.GraphID, params.Islands, time.Since(start), timing.StageGenerate)

	if err := w.setStatus(ctx, data.GraphID, util.JobPersisting); err != nil {
		return err
	}

	start = time.Now()
	err = w.persist(ctx, data.GraphID, result)
	if err != nil {
		w.metrics.ObserveStage(timing.StagePersist, time.Since(start))
		w.metrics.RunFailed()
		if markErr := w.markFailed(ctx, data.GraphID, util.JobPersisting, err); markErr != nil {
			logger.Error("[Queue] Failed to record job failure", "graph_id", data.GraphID, "err", markErr)
		}
		return err
	}

	w.recordTime(ctx, data.GraphID, params.Islands, time.Since(start), timing.StagePersist)

	if err := w.setStatus(ctx, data.GraphID, util.JobCompleted); err != nil {
		return err
	}

	identities := 0
	for _, n := range result.Anomalous.Nodes {
		if n.Kind() == common.KindIdentity {
			identities++
		}
	}
	w.metrics.RunCompleted(len(result.Clean.Islands), identities, result.Labels)
	return nil
}

// persist writes both snapshots to the primary store and, if configured, the
// archive. Every write is retried on its own.
func (w *Worker) persist(ctx context.Context, graphID string, result *graph.RunResult) error {
	snapshots := map[store.Phase]common.Snapshot{
		store.PhaseClean:     result.Clean,
		store.PhaseAnomalous: result.Anomalous,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, phase := range store.Phases {
		snap := snapshots[phase]

		g.Go(func() error {
			return w.retry(gctx, "postgres", func(ctx context.Context) error {
				return w.store.SaveSnapshot(ctx, graphID, phase, snap)
			})
		})

		if w.archive == nil {
			continue
		}
		g.Go(func() error {
			return w.retry(gctx, "s3", func(ctx context.Context) error {
				if err := w.archive.SaveSnapshot(ctx, graphID, phase, snap); err != nil {
					return err
				}
				key, err := w.archive.SaveNQuads(ctx, graphID, phase, snap)
				if err != nil {
					return err
				}
				logger.Debug("[Queue] Archived graph", "graph_id", graphID, "phase", phase, "key", key)
				return nil
			})
		})
	}
	return g.Wait()
}

func (w *Worker) retry(ctx context.Context, backend string, fn func(ctx context.Context) error) error {
	err := util.RetryErrWithContext(ctx, w.persistTries, w.persistBackoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil {
			w.metrics.PersistFailed(backend)
			logger.Warn("[Queue] Persist attempt failed", "backend", backend, "err", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to persist to %s: %w", backend, err)
	}
	return nil
}

func (w *Worker) setStatus(ctx context.Context, graphID string, status util.JobStatus) error {
	err := w.jobs.UpdateGraphStatus(ctx, db.UpdateGraphStatusParams{
		ID:     graphID,
		Status: string(status),
	})
	if err != nil {
		return fmt.Errorf("failed to set job %s to %s: %w", graphID, status, err)
	}
	return nil
}

func (w *Worker) markFailed(ctx context.Context, graphID string, at util.JobStatus, cause error) error {
	err := w.jobs.MarkGraphFailed(ctx, db.MarkGraphFailedParams{
		ID:       graphID,
		FailedAt: pgtype.Text{String: string(at), Valid: true},
		Error:    pgtype.Text{String: util.SanitizePostgresText(cause.Error()), Valid: true},
	})
	if err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", graphID, err)
	}
	return nil
}
