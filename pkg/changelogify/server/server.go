// Package server exposes the pipeline over HTTP: manual release generation,
// release reads, version suggestion and lifecycle notification intake.
package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/randalmurphal/changelogify/pkg/changelogify"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
)

// DefaultListLimit caps GET /api/releases when no limit is given.
const DefaultListLimit = 5

// Deps are the collaborators the handlers call.
type Deps struct {
	// Pipeline returns the current pipeline. It is called per request so a
	// settings reload can swap it.
	Pipeline func() *changelogify.Pipeline

	// Recorder receives POST /api/notifications. Nil disables the route's
	// behavior with 503.
	Recorder *source.Recorder

	// Gatherer backs GET /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// New returns an echo instance with recovery middleware and every route
// registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	Register(e, d)
	return e
}

// Register wires up all routes on e.
func Register(e *echo.Echo, d Deps) {
	h := &handlers{deps: d}

	e.POST("/api/releases", h.createRelease)
	e.GET("/api/releases", h.listReleases)
	e.GET("/api/releases/latest", h.latestRelease)
	e.GET("/api/releases/:id", h.getRelease)
	e.GET("/api/releases/:id/content", h.releaseContent)
	e.GET("/api/versions/next", h.nextVersion)
	e.POST("/api/notifications", h.postNotification)
	e.GET("/healthz", healthz)

	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}

func healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
