// Package server exposes the HTTP surface: the bearer-protected refresh
// trigger, read endpoints for stored next events, the calendar feed, and
// the health and metrics endpoints.
package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nextlive/internal/calendar"
	"nextlive/internal/logger"
	"nextlive/internal/refresher"
	"nextlive/internal/storage"
)

// Server wires the refresher and store behind HTTP handlers.
type Server struct {
	echo      *echo.Echo
	store     *storage.Store
	refresher *refresher.Refresher
	secret    string
	httpSrv   *http.Server
}

// New builds the server and its routes. secret guards the refresh endpoint;
// an empty secret disables it entirely rather than leaving it open.
func New(store *storage.Store, ref *refresher.Refresher, secret string) *Server {
	s := &Server{
		echo:      echo.New(),
		store:     store,
		refresher: ref,
		secret:    secret,
	}

	s.echo.POST("/api/events/refresh", s.handleRefresh, s.requireBearer)
	s.echo.GET("/api/artists/:id/next-event", s.handleNextEvent)
	s.echo.GET("/calendar.ics", s.handleCalendar)
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", func(c echo.Context) error {
		promhttp.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.echo,
	}
	logger.Info("http server listening", logger.Fields{"addr": addr})
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// requireBearer checks the Authorization header against the configured
// secret with a constant-time compare.
func (s *Server) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.secret == "" {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "refresh endpoint is not configured",
			})
		}

		auth := c.Request().Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unauthorized",
			})
		}
		return next(c)
	}
}

func (s *Server) handleRefresh(c echo.Context) error {
	start := time.Now()
	sum := s.refresher.RefreshAll(c.Request().Context())
	logger.Info("refresh run finished", logger.Fields{
		"total":    sum.Total,
		"success":  sum.Success,
		"failed":   sum.Failed,
		"duration": time.Since(start).String(),
	})
	return c.JSON(http.StatusOK, sum)
}

func (s *Server) handleNextEvent(c echo.Context) error {
	evt, err := s.store.NextEvent(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		logger.Error("reading next event failed", logger.Fields{"artist": c.PathParam("id")}, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage error"})
	}
	if evt == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no next event"})
	}
	return c.JSON(http.StatusOK, evt)
}

func (s *Server) handleCalendar(c echo.Context) error {
	rows, err := s.store.ListNextEvents(c.Request().Context())
	if err != nil {
		logger.Error("listing next events failed", nil, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage error"})
	}
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.GenerateFeed(rows)))
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
