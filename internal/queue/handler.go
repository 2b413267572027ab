package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/leaselock"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
)

// MessageFromGraph rebuilds the generate message of a stored job.
func MessageFromGraph(g db.Graph, correlationID string) GenerateJobMsg {
	return GenerateJobMsg{
		GraphID:           g.ID,
		CorrelationID:     correlationID,
		Seed:              uint64(g.Seed),
		Islands:           int(g.Islands),
		AnomalyPercentage: g.AnomalyPercentage,
		AsOf:              g.AsOf.Time.Format(time.DateOnly),
		MinAge:            int(g.MinAge),
		MaxAge:            int(g.MaxAge),
		MaxIdentities:     int(g.MaxIdentities),
	}
}

// RecoverStaleGraphs resumes jobs whose worker stopped.
//
// Expired leases are reaped first: an interrupted generation is requeued at
// once and an interrupted deletion is published again. Jobs stuck in
// generating or persisting for longer than staleAfter without a live lease
// are requeued as well. leases may be nil.
func RecoverStaleGraphs(ctx context.Context, ch Publisher, jobs JobStore, leases LeaseReaper, staleAfter time.Duration) error {
	recovered := make(map[string]bool)

	if leases != nil {
		expired, err := leases.Reap(ctx)
		if err != nil {
			return err
		}
		for _, l := range expired {
			logger.Warn("[Queue] Reaped expired lease", "graph_id", l.GraphID, "job", l.Job, "holder", l.Holder, "expired_at", l.ExpiredAt)
			switch l.Job {
			case leaselock.JobDelete:
				if err := requeueDelete(ch, l.GraphID); err != nil {
					logger.Error("[Queue] Failed to republish delete", "graph_id", l.GraphID, "err", err)
				}
			case leaselock.JobGenerate:
				g, err := jobs.GetGraph(ctx, l.GraphID)
				if err != nil {
					logger.Error("[Queue] Failed to load interrupted graph", "graph_id", l.GraphID, "err", err)
					continue
				}
				if !interrupted(g) {
					continue
				}
				if err := requeueGenerate(ctx, ch, jobs, g); err != nil {
					logger.Error("[Queue] Failed to requeue graph", "graph_id", g.ID, "err", err)
					continue
				}
			}
			recovered[l.GraphID] = true
		}
	}

	stale, err := jobs.GetStaleGraphs(ctx, pgtype.Interval{
		Microseconds: staleAfter.Microseconds(),
		Valid:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to get stale graphs: %w", err)
	}

	if len(stale) == 0 && len(recovered) == 0 {
		logger.Debug("[Queue] No stale graphs found")
		return nil
	}

	for _, g := range stale {
		if recovered[g.ID] {
			continue
		}
		if err := requeueGenerate(ctx, ch, jobs, g); err != nil {
			logger.Error("[Queue] Failed to requeue graph", "graph_id", g.ID, "err", err)
		}
	}

	return nil
}

func interrupted(g db.Graph) bool {
	switch util.JobStatus(g.Status) {
	case util.JobGenerating, util.JobPersisting:
		return true
	}
	return false
}

func requeueGenerate(ctx context.Context, ch Publisher, jobs JobStore, g db.Graph) error {
	correlationID, err := NewCorrelationID()
	if err != nil {
		return err
	}
	if err := jobs.ResetGraphToPending(ctx, g.ID); err != nil {
		return fmt.Errorf("failed to reset graph status: %w", err)
	}
	msgBytes, err := json.Marshal(MessageFromGraph(g, correlationID))
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	if err := PublishFIFO(ch, GenerateQueue, msgBytes); err != nil {
		return err
	}
	logger.Info("[Queue] Recovered stale graph", "graph_id", g.ID, "previous_status", g.Status, "correlation_id", correlationID)
	return nil
}

func requeueDelete(ch Publisher, graphID string) error {
	correlationID, err := NewCorrelationID()
	if err != nil {
		return err
	}
	msgBytes, err := json.Marshal(DeleteJobMsg{GraphID: graphID, CorrelationID: correlationID})
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	if err := PublishFIFO(ch, DeleteQueue, msgBytes); err != nil {
		return err
	}
	logger.Info("[Queue] Recovered interrupted delete", "graph_id", graphID, "correlation_id", correlationID)
	return nil
}
