package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"shelver/internal/api"
	"shelver/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Daemon.
type Options struct {
	Bind     string
	Token    string
	LockPath string
}

// Daemon serves the planning API and enforces single-instance execution.
type Daemon struct {
	opts    Options
	handler http.Handler
	logger  *slog.Logger
	lock    *flock.Flock

	listener net.Listener
	server   *http.Server
	serveErr chan error
	running  atomic.Bool
}

// New constructs a daemon around svc.
func New(opts Options, svc *api.PlanService, logger *slog.Logger) (*Daemon, error) {
	if svc == nil {
		return nil, errors.New("daemon: plan service is required")
	}
	if strings.TrimSpace(opts.Bind) == "" {
		return nil, errors.New("daemon: bind address is required")
	}
	if strings.TrimSpace(opts.LockPath) == "" {
		return nil, errors.New("daemon: lock path is required")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	return &Daemon{
		opts:    opts,
		handler: NewRouter(svc, opts.Token, logger),
		logger:  logger,
		lock:    flock.New(opts.LockPath),
	}, nil
}

// Start acquires the lock and begins serving in the background.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another shelver server is already running (lock %s)", d.opts.LockPath)
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", d.opts.Bind)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener
	d.server = &http.Server{
		Handler:           d.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Planning waits on model calls; leave room for slow completions.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	d.serveErr = make(chan error, 1)
	go func() {
		err := d.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		d.serveErr <- err
	}()

	d.running.Store(true)
	d.logger.Info("shelver server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", d.opts.LockPath),
		logging.Bool("auth", d.opts.Token != ""),
	)
	return nil
}

// Addr returns the bound listener address, or "" when not running.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Stop drains in-flight requests and releases the lock.
func (d *Daemon) Stop() error {
	if !d.running.Swap(false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := d.server.Shutdown(shutdownCtx)
	if serveErr := <-d.serveErr; serveErr != nil && err == nil {
		err = serveErr
	}
	if unlockErr := d.lock.Unlock(); unlockErr != nil {
		d.logger.Warn("failed to release server lock", logging.Error(unlockErr))
	}
	d.listener = nil
	d.logger.Info("shelver server stopped")
	return err
}

// Run starts the daemon and blocks until ctx ends or the server fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return d.Stop()
	case err := <-d.serveErr:
		d.serveErr <- err
		stopErr := d.Stop()
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return stopErr
	}
}
