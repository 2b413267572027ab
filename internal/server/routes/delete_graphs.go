package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/idisland/internal/queue"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
)

// DeleteGraphHandler enqueues removal of a graph and all its artifacts.
func DeleteGraphHandler(c echo.Context) error {
	type deleteGraphParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(deleteGraphParams)
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

	correlationID, err := queue.NewCorrelationID()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}
	msg, err := json.Marshal(queue.DeleteJobMsg{GraphID: g.ID, CorrelationID: correlationID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}
	if err := queue.PublishFIFO(appContext(c).App.Queue, queue.DeleteQueue, msg); err != nil {
		logger.Error("Failed to enqueue graph deletion", "graph_id", g.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message":        "Graph deletion queued",
		"correlation_id": correlationID,
	})
}
