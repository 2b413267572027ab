package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/queue"
	mid "github.com/OFFIS-RIT/idisland/internal/server/middleware"
	"github.com/OFFIS-RIT/idisland/internal/storage"
	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
	pgxstore "github.com/OFFIS-RIT/idisland/pkg/store/pgx"
	s3store "github.com/OFFIS-RIT/idisland/pkg/store/s3"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEcho builds the HTTP server around app without starting it.
func NewEcho(app *mid.App, metricsHandler http.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e, metricsHandler)
	return e
}

// s3DownloadLinker presigns links to the N-Quads objects written by the
// worker archive.
func s3DownloadLinker(client *s3.Client, archive *s3store.GraphS3Storage, bucket string) mid.DownloadLinker {
	return func(ctx context.Context, graphID string, phase store.Phase) (string, error) {
		return storage.GenerateDownloadLink(ctx, client, bucket, archive.NQuadsKey(graphID, phase))
	}
}

func Init() {
	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := storage.Migrate(databaseURL, util.GetEnvString("MIGRATIONS_PATH", "migrations")); err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}

	conn, err := storage.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	retryDelay := util.GetEnvDuration("QUEUE_RETRY_DELAY", 30*time.Second)
	if err := queue.SetupQueues(ch, queue.Queues, retryDelay); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Failed to create s3 client", "err", err)
	}
	bucketName := util.GetEnvString("AWS_BUCKET", "idisland")
	archive := s3store.NewGraphS3Storage(storage.NewBucket(s3Client, bucketName))

	parsedMasterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 32)

	queries := db.New(conn)
	app := &mid.App{
		Jobs:           queries,
		Graphs:         pgxstore.NewGraphDBStorageWithConnection(conn),
		Timings:        queries,
		Queue:          ch,
		Key:            &k,
		DownloadLink:   s3DownloadLinker(s3Client, archive, bucketName),
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterUserID:   int32(parsedMasterUserID),
		MasterUserRole: util.GetEnv("MASTER_USER_ROLE"),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e := NewEcho(app, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
