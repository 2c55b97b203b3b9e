package pubstatic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

// Handler returns the configured Echo instance serving OutputDir. It is
// safe to call more than once.
func (a *App) Handler() *echo.Echo {
	if !a.routed {
		a.setupMiddleware()
		a.setupRoutes()
		a.routed = true
	}
	return a.Echo
}

func (a *App) setupRoutes() {
	a.Echo.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.metrics.Registry,
	}))
	a.Echo.Static("/", a.Config.OutputDir)
}

// Serve serves the built site on Config.Addr until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if _, err := os.Stat(a.Config.OutputDir); err != nil {
		return errors.New("output directory missing, run build first: " + a.Config.OutputDir)
	}
	e := a.Handler()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Serving site",
			slog.String("addr", a.Config.Addr),
			slog.String("dir", a.Config.OutputDir))
		errCh <- e.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusNotFound {
		page, readErr := os.ReadFile(filepath.Join(a.Config.OutputDir, "404.html"))
		if readErr == nil {
			_ = c.HTMLBlob(http.StatusNotFound, page)
			return
		}
	}
	code := http.StatusInternalServerError
	if he != nil {
		code = he.Code
	}
	if code >= 500 {
		a.logger.Error("Server error", errorAttr(err))
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
