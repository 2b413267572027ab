package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/server/middleware"
	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// GraphResponse is the client view of a generation job.
type GraphResponse struct {
	ID                string           `json:"id"`
	Seed              uint64           `json:"seed"`
	Islands           int32            `json:"islands"`
	AnomalyPercentage float64          `json:"anomaly_percentage"`
	AsOf              string           `json:"as_of"`
	MinAge            int32            `json:"min_age"`
	MaxAge            int32            `json:"max_age"`
	MaxIdentities     int32            `json:"max_identities"`
	Progress          util.JobProgress `json:"progress"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func NewGraphResponse(g db.Graph) GraphResponse {
	return GraphResponse{
		ID:                g.ID,
		Seed:              uint64(g.Seed),
		Islands:           g.Islands,
		AnomalyPercentage: g.AnomalyPercentage,
		AsOf:              g.AsOf.Time.Format(time.DateOnly),
		MinAge:            g.MinAge,
		MaxAge:            g.MaxAge,
		MaxIdentities:     g.MaxIdentities,
		Progress: util.BuildJobProgress(
			util.JobStatus(g.Status),
			util.JobStatus(g.FailedAt.String),
			g.Error.String,
		),
		CreatedAt: g.CreatedAt.Time,
		UpdatedAt: g.UpdatedAt.Time,
	}
}

func appContext(c echo.Context) *middleware.AppContext {
	return c.(*middleware.AppContext)
}

// canView reports whether user may read g.
func canView(user *middleware.AppUser, g db.Graph) bool {
	if middleware.HasPermission(user, middleware.PermGraphViewAll) {
		return true
	}
	if !middleware.HasPermission(user, middleware.PermGraphView) {
		return false
	}
	return g.CreatedBy.Valid && g.CreatedBy.Int32 == user.UserID
}

// loadGraph fetches the job id and checks that the current user may read
// it. On failure it has already written the error response and returns
// ok == false.
func loadGraph(c echo.Context, id string) (db.Graph, bool, error) {
	ac := appContext(c)
	if ac.User == nil {
		return db.Graph{}, false, c.JSON(http.StatusUnauthorized, errorResponse{"Unauthorized"})
	}

	g, err := ac.App.Jobs.GetGraph(c.Request().Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Graph{}, false, c.JSON(http.StatusNotFound, errorResponse{"Graph not found"})
	}
	if err != nil {
		return db.Graph{}, false, c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}
	if !canView(ac.User, g) {
		// Same response as a missing graph, so foreign ids stay hidden.
		return db.Graph{}, false, c.JSON(http.StatusNotFound, errorResponse{"Graph not found"})
	}
	return g, true, nil
}

// loadCompletedGraph is loadGraph plus the phase query parameter, and it
// rejects graphs whose snapshots are not persisted yet.
func loadCompletedGraph(c echo.Context, id string, phaseName string) (db.Graph, store.Phase, bool, error) {
	phase, err := store.ParsePhase(phaseName)
	if err != nil {
		return db.Graph{}, "", false, c.JSON(http.StatusBadRequest, errorResponse{"Invalid phase"})
	}
	g, ok, err := loadGraph(c, id)
	if !ok {
		return db.Graph{}, "", false, err
	}
	if util.JobStatus(g.Status) != util.JobCompleted {
		return db.Graph{}, "", false, c.JSON(http.StatusConflict, errorResponse{"Graph is not ready"})
	}
	return g, phase, true, nil
}
