package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rabbitmq/amqp091-go"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/pkg/leaselock"
)

// fakeJobs is an in-memory JobStore.
type fakeJobs struct {
	mu      sync.Mutex
	graphs  map[string]db.Graph
	history map[string][]string
	stale   []db.Graph
	stats   []db.AddRunTimeParams
}

func newFakeJobs(graphs ...db.Graph) *fakeJobs {
	f := &fakeJobs{graphs: make(map[string]db.Graph), history: make(map[string][]string)}
	for _, g := range graphs {
		f.graphs[g.ID] = g
	}
	return f
}

func (f *fakeJobs) GetGraph(_ context.Context, id string) (db.Graph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.graphs[id]
	if !ok {
		return db.Graph{}, pgx.ErrNoRows
	}
	return g, nil
}

func (f *fakeJobs) UpdateGraphStatus(_ context.Context, arg db.UpdateGraphStatusParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.graphs[arg.ID]
	g.ID = arg.ID
	g.Status = arg.Status
	f.graphs[arg.ID] = g
	f.history[arg.ID] = append(f.history[arg.ID], arg.Status)
	return nil
}

func (f *fakeJobs) MarkGraphFailed(_ context.Context, arg db.MarkGraphFailedParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.graphs[arg.ID]
	g.ID = arg.ID
	g.Status = "failed"
	g.FailedAt = arg.FailedAt
	g.Error = arg.Error
	f.graphs[arg.ID] = g
	f.history[arg.ID] = append(f.history[arg.ID], "failed")
	return nil
}

func (f *fakeJobs) ResetGraphToPending(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.graphs[id]
	g.Status = "pending"
	f.graphs[id] = g
	return nil
}

func (f *fakeJobs) GetStaleGraphs(context.Context, pgtype.Interval) ([]db.Graph, error) {
	return f.stale, nil
}

func (f *fakeJobs) DeleteGraph(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.graphs[id]; !ok {
		return 0, nil
	}
	delete(f.graphs, id)
	return 1, nil
}

func (f *fakeJobs) AddRunTime(_ context.Context, arg db.AddRunTimeParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = append(f.stats, arg)
	return nil
}

func (f *fakeJobs) PredictRunTime(context.Context, db.PredictRunTimeParams) (int64, error) {
	return 0, nil
}

func (f *fakeJobs) graph(id string) db.Graph {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.graphs[id]
}

// fakeLocker runs fn directly and records the leases it was asked for.
type fakeLocker struct {
	keys    []string
	busy    bool
	expired []leaselock.Expired
}

func (l *fakeLocker) WithLease(ctx context.Context, graphID string, job leaselock.Job, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, string(job)+":"+graphID)
	if l.busy {
		return leaselock.ErrBusy
	}
	return fn(ctx)
}

func (l *fakeLocker) Reap(context.Context) ([]leaselock.Expired, error) {
	out := l.expired
	l.expired = nil
	return out, nil
}

type published struct {
	key string
	msg amqp091.Publishing
}

type fakePublisher struct {
	out  []published
	fail bool
}

func (p *fakePublisher) Publish(_, key string, _, _ bool, msg amqp091.Publishing) error {
	if p.fail {
		return errors.New("channel closed")
	}
	p.out = append(p.out, published{key: key, msg: msg})
	return nil
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(uint64, bool) error { a.acked = true; return nil }

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *fakeAck) Reject(uint64, bool) error { return nil }

func pendingGraph(id string) db.Graph {
	return db.Graph{
		ID:                id,
		Seed:              42,
		Islands:           6,
		AnomalyPercentage: 50,
		AsOf:              pgtype.Date{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		MinAge:            18,
		MaxAge:            60,
		MaxIdentities:     4,
		Status:            "pending",
	}
}
