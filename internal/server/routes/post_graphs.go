package routes

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/queue"
	"github.com/OFFIS-RIT/idisland/pkg/graph"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
)

// CreateGraphHandler stores a pending generation job and enqueues it.
func CreateGraphHandler(c echo.Context) error {
	type createGraphBody struct {
		Seed              *uint64 `json:"seed"`
		Islands           int     `json:"islands" validate:"min=0,max=100000"`
		AnomalyPercentage float64 `json:"anomaly_percentage" validate:"min=0,max=10000"`
		AsOf              string  `json:"as_of"`
		MinAge            *int    `json:"min_age" validate:"omitempty,min=1,max=150"`
		MaxAge            *int    `json:"max_age" validate:"omitempty,min=1,max=150"`
		MaxIdentities     *int    `json:"max_identities" validate:"omitempty,min=1,max=100"`
	}

	type createGraphResponse struct {
		Message       string         `json:"message"`
		CorrelationID string         `json:"correlation_id,omitempty"`
		Graph         *GraphResponse `json:"graph,omitempty"`
	}

	data := new(createGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createGraphResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createGraphResponse{Message: "Invalid request body"})
	}

	asOf := time.Now().UTC()
	if data.AsOf != "" {
		parsed, err := time.Parse(time.DateOnly, data.AsOf)
		if err != nil {
			return c.JSON(http.StatusBadRequest, createGraphResponse{Message: "as_of must be yyyy-mm-dd"})
		}
		asOf = parsed
	}
	minAge := valueOr(data.MinAge, 1)
	maxAge := valueOr(data.MaxAge, 80)
	if maxAge < minAge {
		return c.JSON(http.StatusBadRequest, createGraphResponse{Message: "max_age must not be below min_age"})
	}
	maxIdentities := valueOr(data.MaxIdentities, 5)
	if _, err := graph.AnomalyCount(data.Islands, data.AnomalyPercentage); err != nil {
		return c.JSON(http.StatusBadRequest, createGraphResponse{Message: "Invalid anomaly percentage"})
	}
	seed := rand.Uint64()
	if data.Seed != nil {
		seed = *data.Seed
	}

	ac := appContext(c)
	user := ac.User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, createGraphResponse{Message: "Unauthorized"})
	}
	ctx := c.Request().Context()

	id, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createGraphResponse{Message: "Internal server error"})
	}
	correlationID, err := queue.NewCorrelationID()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createGraphResponse{Message: "Internal server error"})
	}

	g, err := ac.App.Jobs.CreateGraph(ctx, db.CreateGraphParams{
		ID:                id,
		Seed:              int64(seed),
		Islands:           int32(data.Islands),
		AnomalyPercentage: data.AnomalyPercentage,
		AsOf:              pgtype.Date{Time: asOf, Valid: true},
		MinAge:            int32(minAge),
		MaxAge:            int32(maxAge),
		MaxIdentities:     int32(maxIdentities),
		CreatedBy:         pgtype.Int4{Int32: user.UserID, Valid: true},
	})
	if err != nil {
		logger.Error("Failed to create graph job", "err", err)
		return c.JSON(http.StatusInternalServerError, createGraphResponse{Message: "Internal server error"})
	}

	msg, err := json.Marshal(queue.MessageFromGraph(g, correlationID))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createGraphResponse{Message: "Internal server error"})
	}
	if err := queue.PublishFIFO(ac.App.Queue, queue.GenerateQueue, msg); err != nil {
		logger.Error("Failed to enqueue graph job", "graph_id", g.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, createGraphResponse{Message: "Internal server error"})
	}

	logger.Info("Queued graph generation", "graph_id", g.ID, "correlation_id", correlationID, "user_id", user.UserID)
	res := NewGraphResponse(g)
	return c.JSON(http.StatusAccepted, createGraphResponse{
		Message:       "Graph generation queued",
		CorrelationID: correlationID,
		Graph:         &res,
	})
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
