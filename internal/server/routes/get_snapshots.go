package routes

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/export"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

const nquadsMIME = "application/n-quads"

type snapshotParams struct {
	ID    string `param:"id" validate:"required"`
	Phase string `query:"phase"`
}

func bindSnapshotParams(c echo.Context, params any) error {
	if err := c.Bind(params); err != nil {
		return err
	}
	return c.Validate(params)
}

func loadSnapshot(c echo.Context, params snapshotParams) (common.Snapshot, bool, error) {
	g, phase, ok, err := loadCompletedGraph(c, params.ID, params.Phase)
	if !ok {
		return common.Snapshot{}, false, err
	}
	snap, err := appContext(c).App.Graphs.LoadSnapshot(c.Request().Context(), g.ID, phase)
	if errors.Is(err, store.ErrNotFound) {
		return common.Snapshot{}, false, c.JSON(http.StatusNotFound, errorResponse{"Snapshot not found"})
	}
	if err != nil {
		logger.Error("Failed to load snapshot", "graph_id", g.ID, "phase", phase, "err", err)
		return common.Snapshot{}, false, c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}
	return snap, true, nil
}

// GetIslandsHandler returns the islands of a graph with their identities
// resolved.
func GetIslandsHandler(c echo.Context) error {
	type islandResponse struct {
		Base       string            `json:"base"`
		Identities []common.Identity `json:"identities"`
	}

	params := new(snapshotParams)
	if err := bindSnapshotParams(c, params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"Invalid request params"})
	}

	snap, ok, err := loadSnapshot(c, *params)
	if !ok {
		return err
	}
	g, err := snap.Graph()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}

	res := make([]islandResponse, 0, len(snap.Islands))
	for _, island := range snap.Islands {
		identities, err := g.Identities(island)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
		}
		res = append(res, islandResponse{Base: island.Base(), Identities: identities})
	}
	return c.JSON(http.StatusOK, res)
}

// GetTriplesHandler streams the graph as N-Quads.
func GetTriplesHandler(c echo.Context) error {
	params := new(snapshotParams)
	if err := bindSnapshotParams(c, params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"Invalid request params"})
	}

	snap, ok, err := loadSnapshot(c, *params)
	if !ok {
		return err
	}
	g, err := snap.Graph()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}

	var buf bytes.Buffer
	if err := export.WriteNQuads(&buf, export.Triples(g, export.DefaultBaseURI)); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}
	return c.Blob(http.StatusOK, nquadsMIME, buf.Bytes())
}

// GetSimilarIdentitiesHandler ranks the identities of a graph by name
// similarity to one of them.
func GetSimilarIdentitiesHandler(c echo.Context) error {
	type similarParams struct {
		ID         string `param:"id" validate:"required"`
		IdentityID string `param:"identity_id" validate:"required"`
		Phase      string `query:"phase"`
		Limit      int    `query:"limit" validate:"min=0,max=100"`
	}

	params := new(similarParams)
	if err := bindSnapshotParams(c, params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"Invalid request params"})
	}
	if params.Limit == 0 {
		params.Limit = 10
	}

	g, phase, ok, err := loadCompletedGraph(c, params.ID, params.Phase)
	if !ok {
		return err
	}

	hits, err := appContext(c).App.Graphs.FindSimilarIdentities(
		c.Request().Context(), g.ID, phase, params.IdentityID, params.Limit,
	)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{"Identity not found"})
	}
	if err != nil {
		logger.Error("Failed to find similar identities", "graph_id", g.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}
	return c.JSON(http.StatusOK, hits)
}

// GetDownloadLinkHandler returns a presigned link to the archived N-Quads.
func GetDownloadLinkHandler(c echo.Context) error {
	params := new(snapshotParams)
	if err := bindSnapshotParams(c, params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{"Invalid request params"})
	}

	g, phase, ok, err := loadCompletedGraph(c, params.ID, params.Phase)
	if !ok {
		return err
	}

	link := appContext(c).App.DownloadLink
	if link == nil {
		return c.JSON(http.StatusNotImplemented, errorResponse{"Downloads are not configured"})
	}
	url, err := link(c.Request().Context(), g.ID, phase)
	if err != nil {
		logger.Error("Failed to generate download link", "graph_id", g.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{"Internal server error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
