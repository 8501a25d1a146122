// Package server supervises the game server's long-running components,
// currently the HTTP listener and the database keepalive. Components start
// in registration order and stop in reverse, triggered by SIGINT/SIGTERM
// or by the first component failure.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is one supervised component.
type Service interface {
	// Start runs the component and blocks until it stops or fails.
	Start() error
	// Stop asks the component to shut down; Start then returns.
	Stop()
}

// FuncService adapts a start/stop function pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

func (f *FuncService) Start() error { return f.StartFn() }
func (f *FuncService) Stop()        { f.StopFn() }

// Lifecycle runs a set of named Services as one unit.
type Lifecycle struct {
	logger *zap.Logger

	mu         sync.Mutex
	components []component
}

type component struct {
	name string
	svc  Service
}

// NewLifecycle returns an empty Lifecycle logging through logger.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a component. Registration order is start order; stop order
// is the reverse.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components = append(l.components, component{name: name, svc: svc})
}

// Run starts every component and blocks until a SIGINT/SIGTERM arrives,
// the context is cancelled, or a component's Start returns an error. It
// then stops all components in reverse order before returning.
//
// Postcondition: every component's Stop has been called when Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	began := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	failures := make(chan error, len(l.components))
	for _, c := range l.components {
		c := c
		go func() {
			l.logger.Info("component starting", zap.String("component", c.name))
			up := time.Now()
			if err := c.svc.Start(); err != nil {
				l.logger.Error("component failed",
					zap.String("component", c.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(up)),
				)
				failures <- fmt.Errorf("component %s: %w", c.name, err)
				cancel()
			}
		}()
	}
	l.logger.Info("all components started",
		zap.Int("count", len(l.components)),
		zap.Duration("elapsed", time.Since(began)),
	)

	select {
	case sig := <-sigCh:
		l.logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case err := <-failures:
		l.logger.Error("component error, shutting down", zap.Error(err))
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	l.stopAll()

	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(began)))
	return nil
}

func (l *Lifecycle) stopAll() {
	began := time.Now()
	for i := len(l.components) - 1; i >= 0; i-- {
		c := l.components[i]
		stopStart := time.Now()
		c.svc.Stop()
		l.logger.Info("component stopped",
			zap.String("component", c.name),
			zap.Duration("elapsed", time.Since(stopStart)),
		)
	}
	l.logger.Info("all components stopped", zap.Duration("elapsed", time.Since(began)))
}
