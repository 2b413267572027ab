package queue

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/timing"
	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/leaselock"
	"github.com/OFFIS-RIT/idisland/pkg/locale"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/metrics"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

// JobStore tracks the lifecycle of generation jobs. *db.Queries implements
// it.
type JobStore interface {
	GetGraph(ctx context.Context, id string) (db.Graph, error)
	UpdateGraphStatus(ctx context.Context, arg db.UpdateGraphStatusParams) error
	MarkGraphFailed(ctx context.Context, arg db.MarkGraphFailedParams) error
	ResetGraphToPending(ctx context.Context, id string) error
	GetStaleGraphs(ctx context.Context, staleAfter pgtype.Interval) ([]db.Graph, error)
	DeleteGraph(ctx context.Context, id string) (int64, error)
}

// Locker serializes jobs on one graph across workers. *leaselock.Client
// implements it.
type Locker interface {
	WithLease(ctx context.Context, graphID string, job leaselock.Job, fn func(ctx context.Context) error) error
}

// LeaseReaper hands out the leases of jobs whose worker stopped.
// *leaselock.Client implements it.
type LeaseReaper interface {
	Reap(ctx context.Context) ([]leaselock.Expired, error)
}

// Archive is a GraphStorage that can also publish N-Quads exports.
type Archive interface {
	store.GraphStorage
	SaveNQuads(ctx context.Context, graphID string, phase store.Phase, snap common.Snapshot) (string, error)
}

// Worker processes queue messages.
type Worker struct {
	jobs    JobStore
	locks   Locker
	store   store.GraphStorage
	archive Archive
	metrics *metrics.Metrics
	timings timing.Store
	names   locale.Provider

	persistTries   int
	persistBackoff time.Duration
}

// NewWorkerParams configures a Worker. Archive, Metrics, Timings and
// Provider are optional; a nil Provider selects the generator default.
type NewWorkerParams struct {
	Jobs     JobStore
	Locks    Locker
	Store    store.GraphStorage
	Archive  Archive
	Metrics  *metrics.Metrics
	Timings  timing.Store
	Provider locale.Provider

	PersistTries   int
	PersistBackoff time.Duration
}

func NewWorker(params NewWorkerParams) *Worker {
	w := &Worker{
		jobs:           params.Jobs,
		locks:          params.Locks,
		store:          params.Store,
		archive:        params.Archive,
		metrics:        params.Metrics,
		timings:        params.Timings,
		names:          params.Provider,
		persistTries:   params.PersistTries,
		persistBackoff: params.PersistBackoff,
	}
	if w.metrics == nil {
		w.metrics = metrics.New(prometheus.NewRegistry())
	}
	if w.persistTries <= 0 {
		w.persistTries = 3
	}
	if w.persistBackoff <= 0 {
		w.persistBackoff = time.Second
	}
	return w
}

// recordTime stores a stage duration for future predictions. Failures are
// logged only.
func (w *Worker) recordTime(ctx context.Context, graphID string, islands int, d time.Duration, stage string) {
	w.metrics.ObserveStage(stage, d)
	if w.timings == nil {
		return
	}
	if err := timing.AddRunTime(ctx, w.timings, graphID, islands, d, stage); err != nil {
		logger.Warn("[Queue] Failed to record stage time", "graph_id", graphID, "stage", stage, "err", err)
	}
}
