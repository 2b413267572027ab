package leaselock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaseRow struct {
	job     string
	holder  string
	token   string
	expires time.Time
}

// fakeDB emulates the graph_leases statements in memory.
type fakeDB struct {
	mu        sync.Mutex
	leases    map[string]leaseRow
	failRenew bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{leases: make(map[string]leaseRow)}
}

type row struct {
	graphID string
	err     error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.graphID
	return nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	graphID := args[0].(string)
	now := time.Now()
	current, held := f.leases[graphID]

	switch {
	case strings.Contains(sql, "INSERT INTO graph_leases"):
		if held && current.expires.After(now) {
			return row{err: pgx.ErrNoRows}
		}
		ttl := time.Duration(args[4].(int64)) * time.Millisecond
		f.leases[graphID] = leaseRow{
			job:     args[1].(string),
			holder:  args[2].(string),
			token:   args[3].(string),
			expires: now.Add(ttl),
		}
		return row{graphID: graphID}
	case strings.Contains(sql, "UPDATE graph_leases"):
		if f.failRenew || !held || current.token != args[1].(string) {
			return row{err: pgx.ErrNoRows}
		}
		current.expires = now.Add(time.Duration(args[2].(int64)) * time.Millisecond)
		f.leases[graphID] = current
		return row{graphID: graphID}
	}
	return row{err: errors.New("unexpected query")}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !strings.Contains(sql, "DELETE FROM graph_leases") {
		return pgconn.CommandTag{}, errors.New("unexpected statement")
	}
	graphID, token := args[0].(string), args[1].(string)
	if current, ok := f.leases[graphID]; ok && current.token == token {
		delete(f.leases, graphID)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("DELETE 0"), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !strings.Contains(sql, "WHERE expires_at < now()") {
		return nil, errors.New("unexpected query")
	}
	now := time.Now()
	rows := &expiredRows{}
	for graphID, l := range f.leases {
		if l.expires.Before(now) {
			rows.data = append(rows.data, []any{graphID, l.job, l.holder, l.expires})
			delete(f.leases, graphID)
		}
	}
	return rows, nil
}

// expiredRows is a pgx.Rows over reaped lease tuples.
type expiredRows struct {
	pgx.Rows
	data [][]any
	pos  int
}

func (r *expiredRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *expiredRows) Scan(dest ...any) error {
	cur := r.data[r.pos-1]
	*(dest[0].(*string)) = cur[0].(string)
	*(dest[1].(*string)) = cur[1].(string)
	*(dest[2].(*string)) = cur[2].(string)
	*(dest[3].(*time.Time)) = cur[3].(time.Time)
	return nil
}

func (r *expiredRows) Err() error { return nil }
func (r *expiredRows) Close()     {}

func (f *fakeDB) setFailRenew(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRenew = v
}

func (f *fakeDB) lease(graphID string) (leaseRow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leases[graphID]
	return l, ok
}

func (f *fakeDB) expire(graphID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.leases[graphID]
	l.expires = time.Now().Add(-time.Second)
	f.leases[graphID] = l
}

func TestAcquireRecordsJobAndHolder(t *testing.T) {
	db := newFakeDB()
	c := NewWithConn(db, Config{Holder: "worker-a", TTL: time.Minute})
	ctx := context.Background()

	lease, err := c.Acquire(ctx, "g1", JobGenerate)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(lease.Token, "generate-"))
	assert.Equal(t, "worker-a", lease.Holder)

	row, ok := db.lease("g1")
	require.True(t, ok)
	assert.Equal(t, "generate", row.job)
	assert.Equal(t, "worker-a", row.holder)

	require.NoError(t, lease.Release(ctx))
	_, ok = db.lease("g1")
	assert.False(t, ok)
	assert.Error(t, lease.Context.Err())
}

func TestDefaultHolder(t *testing.T) {
	c := NewWithConn(newFakeDB(), Config{})
	assert.NotEmpty(t, c.Holder())
}

func TestGenerateIsRefusedWhileLeased(t *testing.T) {
	db := newFakeDB()
	a := NewWithConn(db, Config{Holder: "a", TTL: time.Minute})
	b := NewWithConn(db, Config{Holder: "b", TTL: time.Minute})
	ctx := context.Background()

	held, err := a.Acquire(ctx, "g1", JobGenerate)
	require.NoError(t, err)

	_, err = b.Acquire(ctx, "g1", JobGenerate)
	assert.ErrorIs(t, err, ErrBusy)

	other, err := b.Acquire(ctx, "g2", JobGenerate)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))
	require.NoError(t, held.Release(ctx))

	again, err := b.Acquire(ctx, "g1", JobGenerate)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestAcquireEmptyGraphID(t *testing.T) {
	_, err := NewWithConn(newFakeDB(), Config{}).Acquire(context.Background(), "", JobGenerate)
	assert.Error(t, err)
}

func TestDeleteWaitsForGeneration(t *testing.T) {
	db := newFakeDB()
	c := NewWithConn(db, Config{TTL: time.Minute, WaitInterval: 10 * time.Millisecond})
	ctx := context.Background()

	gen, err := c.Acquire(ctx, "g1", JobGenerate)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = gen.Release(context.Background())
	}()

	del, err := c.Acquire(ctx, "g1", JobDelete)
	require.NoError(t, err)
	row, ok := db.lease("g1")
	require.True(t, ok)
	assert.Equal(t, "delete", row.job)
	require.NoError(t, del.Release(ctx))
}

func TestDeleteWaitHonoursContext(t *testing.T) {
	db := newFakeDB()
	c := NewWithConn(db, Config{TTL: time.Minute, WaitInterval: 5 * time.Millisecond})

	held, err := c.Acquire(context.Background(), "g1", JobGenerate)
	require.NoError(t, err)
	defer held.Release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = c.Acquire(ctx, "g1", JobDelete)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExpiredLeaseCanBeTaken(t *testing.T) {
	db := newFakeDB()
	a := NewWithConn(db, Config{Holder: "a", TTL: time.Minute})
	b := NewWithConn(db, Config{Holder: "b", TTL: time.Minute})
	ctx := context.Background()

	_, err := a.Acquire(ctx, "g1", JobGenerate)
	require.NoError(t, err)
	db.expire("g1")

	lease, err := b.Acquire(ctx, "g1", JobGenerate)
	require.NoError(t, err)
	row, _ := db.lease("g1")
	assert.Equal(t, "b", row.holder)
	require.NoError(t, lease.Release(ctx))
}

func TestLostLeaseCancelsContext(t *testing.T) {
	db := newFakeDB()
	c := NewWithConn(db, Config{TTL: 2 * time.Second, RenewEvery: time.Second})

	lease, err := c.Acquire(context.Background(), "g1", JobGenerate)
	require.NoError(t, err)
	db.setFailRenew(true)

	select {
	case <-lease.Context.Done():
		assert.ErrorIs(t, context.Cause(lease.Context), ErrLost)
	case <-time.After(5 * time.Second):
		t.Fatal("lease context was not cancelled")
	}
}

func TestWithLeaseReleases(t *testing.T) {
	db := newFakeDB()
	c := NewWithConn(db, Config{TTL: time.Minute})

	called := false
	err := c.WithLease(context.Background(), "g1", JobGenerate, func(ctx context.Context) error {
		called = true
		_, held := db.lease("g1")
		assert.True(t, held)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	_, held := db.lease("g1")
	assert.False(t, held)
}

func TestReapReturnsExpiredJobs(t *testing.T) {
	db := newFakeDB()
	c := NewWithConn(db, Config{Holder: "crashed", TTL: time.Minute})
	ctx := context.Background()

	_, err := c.Acquire(ctx, "g1", JobGenerate)
	require.NoError(t, err)
	_, err = c.Acquire(ctx, "g2", JobDelete)
	require.NoError(t, err)
	live, err := c.Acquire(ctx, "g3", JobGenerate)
	require.NoError(t, err)
	defer live.Release(ctx)

	db.expire("g1")
	db.expire("g2")

	reaped, err := c.Reap(ctx)
	require.NoError(t, err)
	require.Len(t, reaped, 2)

	byGraph := map[string]Expired{}
	for _, e := range reaped {
		byGraph[e.GraphID] = e
	}
	assert.Equal(t, JobGenerate, byGraph["g1"].Job)
	assert.Equal(t, JobDelete, byGraph["g2"].Job)
	assert.Equal(t, "crashed", byGraph["g1"].Holder)

	_, ok := db.lease("g1")
	assert.False(t, ok)
	_, ok = db.lease("g3")
	assert.True(t, ok)

	reaped, err = c.Reap(ctx)
	require.NoError(t, err)
	assert.Empty(t, reaped)
}
