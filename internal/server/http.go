package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fennwald/emberquest/internal/config"
)

// HTTPService adapts a net/http server to the Service interface, with
// graceful shutdown bounded by the configured timeout.
type HTTPService struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewHTTPService creates an HTTPService listening per cfg and serving handler.
//
// Precondition: handler and logger must be non-nil.
func NewHTTPService(cfg config.HTTPConfig, handler http.Handler, logger *zap.Logger) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Start serves HTTP until Stop is called.
//
// Postcondition: Returns nil after a graceful Stop, or the listener error.
func (h *HTTPService) Start() error {
	h.logger.Info("http server listening",
		zap.String("addr", h.srv.Addr),
	)
	if err := h.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and closes the listener.
//
// Postcondition: No new connections are accepted after return.
func (h *HTTPService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Warn("http shutdown incomplete, closing",
			zap.Error(err),
		)
		_ = h.srv.Close()
	}
}
