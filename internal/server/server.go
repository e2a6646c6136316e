// Package server holds the two HTTP faces of clocktime: the origin site
// (`clocktime serve`) and the cache controller gateway (`clocktime proxy`).
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/logging"
)

// NewEngine returns a gin engine with recovery and request logging.
func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(log))
	return r
}

// Run serves h on addr until ctx is done, then shuts down gracefully.
// onShutdown hooks run as soon as shutdown starts, e.g. to end open streams.
func Run(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, log *zap.Logger, onShutdown ...func()) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	for _, fn := range onShutdown {
		srv.RegisterOnShutdown(fn)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}
