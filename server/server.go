package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/nlcal/internal/profile"
	"github.com/hrygo/nlcal/plugin/ai/timeout"
	apiv1 "github.com/hrygo/nlcal/server/router/api/v1"
	"github.com/hrygo/nlcal/server/service/calendar"
	"github.com/hrygo/nlcal/store"
)

type Server struct {
	Profile  *profile.Profile
	Store    *store.Store
	Calendar *calendar.Service

	echoServer *echo.Echo
	httpServer *http.Server
	listener   net.Listener
}

// NewServer wires the API onto a fresh echo instance. store may be nil.
func NewServer(_ context.Context, profile *profile.Profile, store *store.Store, calendarService *calendar.Service) (*Server, error) {
	if calendarService == nil {
		return nil, errors.New("calendar service is required")
	}
	s := &Server{
		Profile:  profile,
		Store:    store,
		Calendar: calendarService,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.Any("error", v.Error))
			}
			slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "http request", attrs...)
			return nil
		},
	}))
	s.echoServer = echoServer

	apiv1.NewAPIV1Service(profile, calendarService).RegisterRoutes(echoServer)
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      s.echoServer,
		ReadTimeout:  timeout.HTTPReadTimeout,
		WriteTimeout: timeout.HTTPWriteTimeout,
		IdleTimeout:  2 * time.Minute,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", slog.Any("error", err))
		}
	}()
	slog.Info("nlcal server listening", slog.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once the server has started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown server", slog.Any("error", err))
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			slog.Error("failed to close store", slog.Any("error", err))
		}
	}
	slog.Info("server stopped properly")
}
