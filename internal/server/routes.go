package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/idisland/internal/server/middleware"
	"github.com/OFFIS-RIT/idisland/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo, metricsHandler http.Handler) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Generation job routes
	apiRoutes.GET("/graphs", routes.ListGraphsHandler, middleware.RequireAnyPermission(middleware.PermGraphView, middleware.PermGraphViewAll))
	apiRoutes.POST("/graphs", routes.CreateGraphHandler, middleware.RequirePermission(middleware.PermGraphCreate))
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler)
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler, middleware.RequirePermission(middleware.PermGraphDelete))

	// Snapshot routes
	apiRoutes.GET("/graphs/:id/islands", routes.GetIslandsHandler)
	apiRoutes.GET("/graphs/:id/triples", routes.GetTriplesHandler)
	apiRoutes.GET("/graphs/:id/download", routes.GetDownloadLinkHandler)
	apiRoutes.GET("/graphs/:id/identities/:identity_id/similar", routes.GetSimilarIdentitiesHandler)
}
