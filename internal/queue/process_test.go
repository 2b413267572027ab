package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/internal/storage"
	"github.com/OFFIS-RIT/idisland/internal/storage/storagetest"
	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/leaselock"
	"github.com/OFFIS-RIT/idisland/pkg/locale/localetest"
	"github.com/OFFIS-RIT/idisland/pkg/metrics"
	"github.com/OFFIS-RIT/idisland/pkg/store"
	"github.com/OFFIS-RIT/idisland/pkg/store/memory"
	s3store "github.com/OFFIS-RIT/idisland/pkg/store/s3"
)

type testWorker struct {
	*Worker
	jobs    *fakeJobs
	locks   *fakeLocker
	store   *memory.GraphMemoryStorage
	archive *s3store.GraphS3Storage
	bucket  *storage.Bucket
}

func newTestWorker(jobs *fakeJobs, primary store.GraphStorage) *testWorker {
	bucket := storage.NewBucket(storagetest.NewFakeObjectAPI(), "islands")
	archive := s3store.NewGraphS3Storage(bucket)
	locks := &fakeLocker{}
	mem, _ := primary.(*memory.GraphMemoryStorage)
	w := NewWorker(NewWorkerParams{
		Jobs:           jobs,
		Locks:          locks,
		Store:          primary,
		Archive:        archive,
		Metrics:        metrics.New(prometheus.NewRegistry()),
		Timings:        jobs,
		Provider:       localetest.Provider{},
		PersistTries:   2,
		PersistBackoff: 1,
	})
	return &testWorker{Worker: w, jobs: jobs, locks: locks, store: mem, archive: archive, bucket: bucket}
}

func generateMsg(t *testing.T, g GenerateJobMsg) string {
	t.Helper()
	data, err := json.Marshal(g)
	require.NoError(t, err)
	return string(data)
}

func TestProcessGenerateMessage(t *testing.T) {
	jobs := newFakeJobs(pendingGraph("g1"))
	w := newTestWorker(jobs, memory.NewGraphMemoryStorage())
	ctx := context.Background()

	msg := generateMsg(t, MessageFromGraph(jobs.graph("g1"), "corr"))
	require.NoError(t, w.ProcessGenerateMessage(ctx, msg))

	assert.Equal(t, []string{"generating", "persisting", "completed"}, jobs.history["g1"])
	assert.Equal(t, []string{"generate:g1"}, w.locks.keys)

	clean, err := w.store.LoadSnapshot(ctx, "g1", store.PhaseClean)
	require.NoError(t, err)
	anomalous, err := w.store.LoadSnapshot(ctx, "g1", store.PhaseAnomalous)
	require.NoError(t, err)
	assert.Len(t, clean.Islands, 6)
	assert.Empty(t, clean.Anomalies)
	assert.Len(t, anomalous.Anomalies, 3)
	assert.Greater(t, len(anomalous.Edges), len(clean.Edges))

	archived, err := w.archive.LoadSnapshot(ctx, "g1", store.PhaseAnomalous)
	require.NoError(t, err)
	assert.Equal(t, anomalous, archived)

	for _, phase := range store.Phases {
		_, err := w.bucket.Get(ctx, w.archive.NQuadsKey("g1", phase))
		assert.NoError(t, err, "missing N-Quads for %s", phase)
	}

	require.Len(t, jobs.stats, 2)
	assert.Equal(t, "generate", jobs.stats[0].StatType)
	assert.Equal(t, "persist", jobs.stats[1].StatType)
	assert.Equal(t, int32(6), jobs.stats[0].Islands)
}

func TestProcessGenerateMessageIsDeterministic(t *testing.T) {
	ctx := context.Background()
	var snaps []common.Snapshot
	for range 2 {
		jobs := newFakeJobs(pendingGraph("g1"))
		w := newTestWorker(jobs, memory.NewGraphMemoryStorage())
		require.NoError(t, w.ProcessGenerateMessage(ctx, generateMsg(t, MessageFromGraph(jobs.graph("g1"), "c"))))
		snap, err := w.store.LoadSnapshot(ctx, "g1", store.PhaseAnomalous)
		require.NoError(t, err)
		snaps = append(snaps, snap)
	}
	assert.Equal(t, snaps[0], snaps[1])
}

func TestProcessGenerateMessageSkipsCompleted(t *testing.T) {
	g := pendingGraph("g1")
	g.Status = "completed"
	jobs := newFakeJobs(g)
	w := newTestWorker(jobs, memory.NewGraphMemoryStorage())

	require.NoError(t, w.ProcessGenerateMessage(context.Background(), generateMsg(t, MessageFromGraph(g, "c"))))
	assert.Empty(t, jobs.history["g1"])
}

func TestProcessGenerateMessageInvalidJob(t *testing.T) {
	jobs := newFakeJobs(pendingGraph("g1"))
	w := newTestWorker(jobs, memory.NewGraphMemoryStorage())
	ctx := context.Background()

	require.NoError(t, w.ProcessGenerateMessage(ctx, "{not json"))

	msg := MessageFromGraph(jobs.graph("g1"), "c")
	msg.AsOf = "yesterday"
	require.NoError(t, w.ProcessGenerateMessage(ctx, generateMsg(t, msg)))
	assert.Equal(t, "failed", jobs.graph("g1").Status)
	assert.Equal(t, "pending", jobs.graph("g1").FailedAt.String)
	assert.Empty(t, w.locks.keys)
}

func TestProcessGenerateMessageGenerationFailure(t *testing.T) {
	jobs := newFakeJobs(pendingGraph("g1"))
	w := newTestWorker(jobs, memory.NewGraphMemoryStorage())

	msg := MessageFromGraph(jobs.graph("g1"), "c")
	msg.AnomalyPercentage = -5
	require.NoError(t, w.ProcessGenerateMessage(context.Background(), generateMsg(t, msg)))

	g := jobs.graph("g1")
	assert.Equal(t, "failed", g.Status)
	assert.Equal(t, "generating", g.FailedAt.String)
	assert.NotEmpty(t, g.Error.String)
}

type failingStorage struct {
	store.GraphStorage
	calls atomic.Int32
}

func (f *failingStorage) SaveSnapshot(context.Context, string, store.Phase, common.Snapshot) error {
	f.calls.Add(1)
	return errors.New("connection reset")
}

func TestProcessGenerateMessagePersistFailure(t *testing.T) {
	jobs := newFakeJobs(pendingGraph("g1"))
	primary := &failingStorage{GraphStorage: memory.NewGraphMemoryStorage()}
	w := newTestWorker(jobs, primary)

	err := w.ProcessGenerateMessage(context.Background(), generateMsg(t, MessageFromGraph(jobs.graph("g1"), "c")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")

	g := jobs.graph("g1")
	assert.Equal(t, "failed", g.Status)
	assert.Equal(t, "persisting", g.FailedAt.String)
	assert.GreaterOrEqual(t, primary.calls.Load(), int32(2))
}

func TestProcessGenerateMessageBusyLease(t *testing.T) {
	jobs := newFakeJobs(pendingGraph("g1"))
	w := newTestWorker(jobs, memory.NewGraphMemoryStorage())
	w.locks.busy = true

	err := w.ProcessGenerateMessage(context.Background(), generateMsg(t, MessageFromGraph(jobs.graph("g1"), "c")))
	assert.ErrorIs(t, err, leaselock.ErrBusy)
	assert.Empty(t, jobs.history["g1"])
}

func TestProcessDeleteMessage(t *testing.T) {
	jobs := newFakeJobs(pendingGraph("g1"))
	w := newTestWorker(jobs, memory.NewGraphMemoryStorage())
	ctx := context.Background()

	require.NoError(t, w.ProcessGenerateMessage(ctx, generateMsg(t, MessageFromGraph(jobs.graph("g1"), "c"))))

	data, err := json.Marshal(DeleteJobMsg{GraphID: "g1", CorrelationID: "d"})
	require.NoError(t, err)
	require.NoError(t, w.ProcessDeleteMessage(ctx, string(data)))
	assert.Equal(t, []string{"generate:g1", "delete:g1"}, w.locks.keys)

	_, err = w.store.LoadSnapshot(ctx, "g1", store.PhaseAnomalous)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = w.archive.LoadSnapshot(ctx, "g1", store.PhaseClean)
	assert.ErrorIs(t, err, store.ErrNotFound)
	keys, err := w.bucket.List(ctx, "graphs/g1/")
	require.NoError(t, err)
	assert.Empty(t, keys)
	_, err = jobs.GetGraph(ctx, "g1")
	assert.Error(t, err)

	require.NoError(t, w.ProcessDeleteMessage(ctx, `{"correlation_id":"x"}`))
}
