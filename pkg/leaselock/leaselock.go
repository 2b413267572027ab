// Package leaselock guards generation jobs with leases kept in the
// graph_leases table. A lease names the graph, the job holding it and the
// worker running that job. A lease whose worker stops renewing it expires and
// can be reaped, which tells the caller which interrupted job to resume.
package leaselock

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/OFFIS-RIT/idisland/pkg/logger"
)

var (
	ErrBusy = errors.New("graph is leased by another job")
	ErrLost = errors.New("graph lease lost")
)

// Job is the kind of work a lease protects.
type Job string

const (
	JobGenerate Job = "generate"
	JobDelete   Job = "delete"
)

// waits reports whether the job queues behind a lease held by another job.
// A delete waits for a running generation; a second generation of the same
// graph is refused so the queue can retry it later.
func (j Job) waits() bool {
	return j == JobDelete
}

// DBConn is the subset of a pgx connection or pool the client needs.
type DBConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Config tunes a Client. Zero values select the defaults.
type Config struct {
	// Holder identifies this worker in the lease rows. Defaults to
	// "<hostname>-<pid>".
	Holder string

	TTL        time.Duration
	RenewEvery time.Duration

	WaitInterval time.Duration
	WaitJitter   time.Duration
}

type Client struct {
	db  DBConn
	cfg Config
}

// Lease is a held graph lease. Context is cancelled when the lease is
// released or lost.
type Lease struct {
	GraphID string
	Job     Job
	Holder  string
	Token   string

	Context context.Context

	client *Client
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Expired describes a reaped lease whose holder stopped renewing it.
type Expired struct {
	GraphID   string
	Job       Job
	Holder    string
	ExpiredAt time.Time
}

func New(pool *pgxpool.Pool, cfg Config) *Client {
	return NewWithConn(pool, cfg)
}

func NewWithConn(conn DBConn, cfg Config) *Client {
	if cfg.Holder == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "worker"
		}
		cfg.Holder = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.RenewEvery <= 0 || cfg.RenewEvery >= cfg.TTL {
		cfg.RenewEvery = max(cfg.TTL/2, time.Second)
	}
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = 2 * time.Second
	}
	if cfg.WaitJitter < 0 {
		cfg.WaitJitter = 0
	}
	return &Client{db: conn, cfg: cfg}
}

// Holder returns the worker identity written to lease rows.
func (c *Client) Holder() string {
	return c.cfg.Holder
}

// WithLease runs fn while holding the lease of graphID for job.
func (c *Client) WithLease(ctx context.Context, graphID string, job Job, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, graphID, job)
	if err != nil {
		return err
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			logger.Warn("[Lock] Failed to release lease", "graph_id", graphID, "job", job, "err", err)
		}
	}()
	return fn(lease.Context)
}

// Acquire takes the lease of graphID for job. Generation fails fast with
// ErrBusy while another job holds the graph; deletion waits for it.
func (c *Client) Acquire(ctx context.Context, graphID string, job Job) (*Lease, error) {
	if graphID == "" {
		return nil, errors.New("lease graph id is empty")
	}

	tok, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	token := string(job) + "-" + tok
	ttlMs := c.cfg.TTL.Milliseconds()

	for {
		ok, err := c.tryAcquire(ctx, graphID, job, token, ttlMs)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lease for %s: %w", graphID, err)
		}
		if ok {
			break
		}
		if !job.waits() {
			return nil, ErrBusy
		}
		logger.Debug("[Lock] Waiting for graph lease", "graph_id", graphID, "job", job)
		if err := sleepWithJitter(ctx, c.cfg.WaitInterval, c.cfg.WaitJitter); err != nil {
			return nil, err
		}
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	l := &Lease{
		GraphID: graphID,
		Job:     job,
		Holder:  c.cfg.Holder,
		Token:   token,
		Context: leaseCtx,
		client:  c,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}
	go l.renewLoop(c.cfg.RenewEvery, ttlMs)

	return l, nil
}

func (c *Client) tryAcquire(ctx context.Context, graphID string, job Job, token string, ttlMs int64) (bool, error) {
	var got string
	err := c.db.QueryRow(ctx, acquireSQL, graphID, string(job), c.cfg.Holder, token, ttlMs).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got != "", nil
}

// Reap deletes every expired lease and returns them. Each entry is a job
// whose worker died or stalled before finishing.
func (c *Client) Reap(ctx context.Context) ([]Expired, error) {
	rows, err := c.db.Query(ctx, reapSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to reap leases: %w", err)
	}
	defer rows.Close()

	var out []Expired
	for rows.Next() {
		var e Expired
		var job string
		if err := rows.Scan(&e.GraphID, &job, &e.Holder, &e.ExpiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaped lease: %w", err)
		}
		e.Job = Job(job)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to reap leases: %w", err)
	}
	return out, nil
}

func (l *Lease) Release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})

	_, err := l.client.db.Exec(ctx, releaseSQL, l.GraphID, l.Token)
	return err
}

func (l *Lease) renewLoop(every time.Duration, ttlMs int64) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.Context.Done():
			return
		case <-t.C:
			if err := l.renew(ttlMs); err != nil {
				logger.Warn("[Lock] Graph lease lost", "graph_id", l.GraphID, "job", l.Job, "err", err)
				l.cancel(err)
				return
			}
		}
	}
}

// renew extends the lease. A missing row means it was reaped or taken over.
func (l *Lease) renew(ttlMs int64) error {
	for attempt := range 3 {
		ctx, cancel := context.WithTimeout(l.Context, 15*time.Second)
		var got string
		err := l.client.db.QueryRow(ctx, renewSQL, l.GraphID, l.Token, ttlMs).Scan(&got)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLost
		}
		if attempt == 2 {
			return err
		}
		if err := sleepWithJitter(l.Context, 200*time.Millisecond, 0); err != nil {
			return err
		}
	}
	return ErrLost
}

func sleepWithJitter(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const acquireSQL = `
INSERT INTO graph_leases (graph_id, job, holder, token, acquired_at, expires_at)
VALUES ($1, $2, $3, $4, now(), now() + ($5::bigint * interval '1 millisecond'))
ON CONFLICT (graph_id) DO UPDATE
SET job         = EXCLUDED.job,
    holder      = EXCLUDED.holder,
    token       = EXCLUDED.token,
    acquired_at = EXCLUDED.acquired_at,
    expires_at  = EXCLUDED.expires_at
WHERE graph_leases.expires_at < now()
RETURNING graph_id;
`

const renewSQL = `
UPDATE graph_leases
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE graph_id = $1 AND token = $2
RETURNING graph_id;
`

const releaseSQL = `
DELETE FROM graph_leases
WHERE graph_id = $1 AND token = $2;
`

const reapSQL = `
DELETE FROM graph_leases
WHERE expires_at < now()
RETURNING graph_id, job, holder, expires_at;
`
