package middleware

import (
	"context"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/queue"
	"github.com/OFFIS-RIT/idisland/internal/timing"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

type AppUser struct {
	UserID      int32
	Role        string
	Permissions []string
}

// JobQueries is the part of *db.Queries used by the HTTP handlers.
type JobQueries interface {
	CreateGraph(ctx context.Context, arg db.CreateGraphParams) (db.Graph, error)
	GetGraph(ctx context.Context, id string) (db.Graph, error)
	ListGraphs(ctx context.Context) ([]db.Graph, error)
	ListGraphsForUser(ctx context.Context, createdBy pgtype.Int4) ([]db.Graph, error)
}

// GraphStore reads persisted snapshots and answers similarity lookups.
type GraphStore interface {
	store.GraphStorage
	store.SimilarIdentityFinder
}

// DownloadLinker presigns a download link for the N-Quads export of a graph.
type DownloadLinker func(ctx context.Context, graphID string, phase store.Phase) (string, error)

type App struct {
	Jobs           JobQueries
	Graphs         GraphStore
	Timings        timing.Store
	Queue          queue.Publisher
	Key            *keyfunc.Keyfunc
	DownloadLink   DownloadLinker
	MasterAPIKey   string
	MasterUserID   int32
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
