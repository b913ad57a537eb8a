// Package httpserver exposes a small read-only status endpoint for the
// running engine. It is intentionally not a control surface: every mutation
// (loops, lives, controls) happens through a live-reloaded program, never
// through HTTP.
package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/soir-live/soir/internal/buildinfo"
	"github.com/soir-live/soir/internal/conf"
	"github.com/soir-live/soir/internal/logging"
)

var log = logging.ForService("httpserver")

// Snapshot is the read-only view of engine state served at GET /status.
type Snapshot struct {
	Generation    uint64  `json:"generation"`
	BPM           float64 `json:"bpm"`
	Loops         int     `json:"loops"`
	Lives         int     `json:"lives"`
	Controls      int     `json:"controls"`
	SchedulerSize int     `json:"scheduler_queue_depth"`
}

// StatusProvider is implemented by internal/engine. Keeping the interface
// here, rather than importing engine, lets httpserver stay a leaf package.
type StatusProvider interface {
	Status() Snapshot
}

// Server serves GET /status and GET /healthz over the configured address.
type Server struct {
	echo     *echo.Echo
	settings *conf.Settings
	status   StatusProvider
	info     *buildinfo.Context
}

// New builds a Server. status may be nil until the engine finishes starting;
// the status handler reports 503 until it is set via SetStatusProvider. info
// may be nil, in which case /healthz reports buildinfo.UnknownValue.
func New(settings *conf.Settings, status StatusProvider, info *buildinfo.Context) *Server {
	s := &Server{
		echo:     echo.New(),
		settings: settings,
		status:   status,
		info:     info,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.GET("/healthz", s.handleHealthz)
	s.echo.GET("/status", s.handleStatus)

	return s
}

// SetStatusProvider installs the status source once the engine is running.
func (s *Server) SetStatusProvider(status StatusProvider) {
	s.status = status
}

func (s *Server) handleHealthz(c echo.Context) error {
	version := buildinfo.UnknownValue
	buildDate := buildinfo.UnknownValue
	if s.info != nil {
		version = s.info.Version()
		buildDate = s.info.BuildDate()
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":     "ok",
		"version":    version,
		"build_date": buildDate,
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	if s.status == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "engine not running")
	}
	return c.JSON(http.StatusOK, s.status.Status())
}

// Start begins listening on settings.HTTP.Addr. It returns once the listener
// is closed (normally via Shutdown).
func (s *Server) Start() error {
	if !s.settings.HTTP.Enabled {
		log.Debug("http status server disabled")
		return nil
	}
	log.Info("starting http status server", "addr", s.settings.HTTP.Addr)
	err := s.echo.Start(s.settings.HTTP.Addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
