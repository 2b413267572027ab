package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/queue"
	mid "github.com/OFFIS-RIT/idisland/internal/server/middleware"
	"github.com/OFFIS-RIT/idisland/internal/storage"
	"github.com/OFFIS-RIT/idisland/internal/storage/storagetest"
	"github.com/OFFIS-RIT/idisland/pkg/metrics"
	"github.com/OFFIS-RIT/idisland/pkg/store"
	"github.com/OFFIS-RIT/idisland/pkg/store/memory"
	s3store "github.com/OFFIS-RIT/idisland/pkg/store/s3"
	"github.com/OFFIS-RIT/idisland/pkg/store/storetest"
)

type stubJobs struct {
	created []db.CreateGraphParams
}

func (s *stubJobs) CreateGraph(_ context.Context, arg db.CreateGraphParams) (db.Graph, error) {
	s.created = append(s.created, arg)
	return db.Graph{ID: arg.ID, Status: "pending", AsOf: arg.AsOf, CreatedBy: arg.CreatedBy}, nil
}

func (s *stubJobs) GetGraph(context.Context, string) (db.Graph, error) {
	return db.Graph{}, pgx.ErrNoRows
}

func (s *stubJobs) ListGraphs(context.Context) ([]db.Graph, error) { return nil, nil }

func (s *stubJobs) ListGraphsForUser(context.Context, pgtype.Int4) ([]db.Graph, error) {
	return nil, nil
}

type stubPublisher struct{ keys []string }

func (p *stubPublisher) Publish(_, key string, _, _ bool, _ amqp091.Publishing) error {
	p.keys = append(p.keys, key)
	return nil
}

func newTestServer(t *testing.T) (*stubJobs, *stubPublisher, http.Handler) {
	t.Helper()
	jobs := &stubJobs{}
	pub := &stubPublisher{}
	app := &mid.App{
		Jobs:           jobs,
		Graphs:         memory.NewGraphMemoryStorage(),
		Queue:          pub,
		MasterAPIKey:   "secret",
		MasterUserID:   1,
		MasterUserRole: "admin",
	}

	reg := prometheus.NewRegistry()
	metrics.New(reg).RunFailed()
	return jobs, pub, NewEcho(app, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func request(h http.Handler, method, target, body string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer secret")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	_, _, h := newTestServer(t)

	rec := request(h, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = request(h, http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "idisland_generator_runs_total")
}

func TestAPIRequiresAuth(t *testing.T) {
	_, _, h := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, request(h, http.MethodGet, "/api/graphs", "", false).Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/api/graphs", "", true).Code)
}

func TestCreateThroughServer(t *testing.T) {
	jobs, pub, h := newTestServer(t)

	rec := request(h, http.MethodPost, "/api/graphs", `{"islands":2,"seed":1}`, true)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, jobs.created, 1)
	assert.Equal(t, int32(1), jobs.created[0].CreatedBy.Int32)
	assert.Equal(t, []string{queue.GenerateQueue}, pub.keys)
}

func TestS3DownloadLinker(t *testing.T) {
	t.Setenv("AWS_PUBLIC_ENDPOINT", "https://files.example.org")
	t.Setenv("AWS_ACCESS_KEY", "key")
	t.Setenv("AWS_SECRET_KEY", "secret")
	t.Setenv("AWS_ENDPOINT", "http://localhost:9000")

	client, err := storage.NewS3Client(context.Background())
	require.NoError(t, err)
	archive := s3store.NewGraphS3Storage(storage.NewBucket(storagetest.NewFakeObjectAPI(), "graphs"))
	ctx := context.Background()
	_, err = archive.SaveNQuads(ctx, "g1", store.PhaseClean, storetest.SampleSnapshot())
	require.NoError(t, err)

	link, err := s3DownloadLinker(client, archive, "graphs")(ctx, "g1", store.PhaseClean)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://files.example.org/graphs/"), link)
	assert.Contains(t, link, "X-Amz-Signature")
}
