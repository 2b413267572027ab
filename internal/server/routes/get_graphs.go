package routes

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/server/middleware"
	"github.com/OFFIS-RIT/idisland/internal/timing"
	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/graph"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

// ListGraphsHandler lists the jobs visible to the current user.
func ListGraphsHandler(c echo.Context) error {
	ac := appContext(c)
	user := ac.User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{"Unauthorized"})
	}
	ctx := c.Request().Context()

	var (
		graphs []db.Graph
		err    error
	)
	if middleware.HasPermission(user, middleware.PermGraphViewAll) {
		graphs, err = ac.App.Jobs.ListGraphs(ctx)
	} else {
		graphs, err = ac.App.Jobs.ListGraphsForUser(ctx, pgtype.Int4{Int32: user.UserID, Valid: true})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}

	res := make([]GraphResponse, 0, len(graphs))
	for _, g := range graphs {
		res = append(res, NewGraphResponse(g))
	}
	return c.JSON(http.StatusOK, res)
}

// GetGraphHandler returns the job state and, for completed jobs, the node,
// edge and anomaly counts of the final graph.
func GetGraphHandler(c echo.Context) error {
	type getGraphParams struct {
		ID string `param:"id" validate:"required"`
	}
	type getGraphResponse struct {
		GraphResponse
		Stats               *graph.Stats `json:"stats,omitempty"`
		EstimatedDurationMs int64        `json:"estimated_duration_ms,omitempty"`
	}

	params := new(getGraphParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"Invalid request params"})
	}

	g, ok, err := loadGraph(c, params.ID)
	if !ok {
		return err
	}

	res := getGraphResponse{GraphResponse: NewGraphResponse(g)}
	if timings := appContext(c).App.Timings; timings != nil {
		if stages := timing.Remaining(util.JobStatus(g.Status)); len(stages) > 0 {
			estimate, err := timing.PredictRunTime(c.Request().Context(), timings, int(g.Islands), stages...)
			if err != nil {
				logger.Warn("Failed to predict run time", "graph_id", g.ID, "err", err)
			}
			res.EstimatedDurationMs = estimate.Milliseconds()
		}
	}
	if util.JobStatus(g.Status) == util.JobCompleted {
		snap, err := appContext(c).App.Graphs.LoadSnapshot(c.Request().Context(), g.ID, store.PhaseAnomalous)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Error("Failed to load snapshot", "graph_id", g.ID, "err", err)
			return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
		}
		if err == nil {
			stats := graph.ComputeStats(snap)
			res.Stats = &stats
		}
	}
	return c.JSON(http.StatusOK, res)
}
