package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/auth"
	"github.com/gitgate/gitgate/pkg/config"
	"github.com/gitgate/gitgate/pkg/cron"
	"github.com/gitgate/gitgate/pkg/hooks"
	"github.com/gitgate/gitgate/pkg/jobs"
	"github.com/gitgate/gitgate/pkg/provision"
	"github.com/gitgate/gitgate/pkg/registry"
	"github.com/gitgate/gitgate/pkg/stats"
	"github.com/gitgate/gitgate/pkg/storage"
	"github.com/gitgate/gitgate/pkg/trigger"
	"github.com/gitgate/gitgate/pkg/web"
	"golang.org/x/sync/errgroup"
)

// Server is the gitgate server.
type Server struct {
	HTTPServer  *web.HTTPServer
	StatsServer *stats.StatsServer
	Cron        *cron.Scheduler
	Config      *config.Config
	Registry    *registry.Registry
	Bridge      *hooks.Bridge

	logger *log.Logger
	ctx    context.Context
}

// NewServer returns a new *Server wired from the configuration in the
// context. Repository entries that fail validation are skipped; the server
// starts with the remaining set.
func NewServer(ctx context.Context) (*Server, error) {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("server")

	st := storage.NewLocalStorage(cfg.RepositoriesPath())
	reg := registry.New(st, logger)
	for _, rc := range cfg.Repos {
		repo, err := rc.Repository()
		if err != nil {
			logger.Error("skipping repo entry", "repo", rc.Name, "err", err)
			continue
		}
		if err := reg.Register(repo); err != nil {
			continue
		}
	}

	checker := provision.NewChecker(st, logger)
	if err := checker.Ensure(ctx, reg.All()); err != nil {
		logger.Error("provisioning incomplete, continuing with reduced set", "err", err)
	}

	bridge := hooks.NewBridge(logger)
	for _, repo := range reg.All() {
		bridge.Attach(repo)
	}

	invoker := trigger.NewInvoker(logger)
	gate := auth.NewGate(reg, invoker, logger)

	var gitHandler http.Handler
	if cfg.HTTP.BackendURL != "" {
		u, err := url.Parse(cfg.HTTP.BackendURL)
		if err != nil {
			return nil, fmt.Errorf("parse backend url: %w", err)
		}
		gitHandler = httputil.NewSingleHostReverseProxy(u)
	}

	ctx = registry.WithContext(ctx, reg)

	srv := &Server{
		Config:   cfg,
		Registry: reg,
		Bridge:   bridge,
		logger:   logger,
		ctx:      ctx,
	}

	// Add cron jobs.
	sched := cron.NewScheduler(ctx)
	for n, j := range jobs.List() {
		spec := j.Runner.Spec(ctx)
		if spec == "" {
			continue
		}

		id, err := sched.AddFunc(spec, j.Runner.Func(ctx))
		if err != nil {
			logger.Warn("error adding cron job", "job", n, "err", err)
		}

		j.ID = id
	}

	srv.Cron = sched

	var err error
	srv.HTTPServer, err = web.NewHTTPServer(ctx, web.Options{
		Registry:   reg,
		Gate:       gate,
		Bridge:     bridge,
		GitHandler: gitHandler,
	})
	if err != nil {
		return nil, fmt.Errorf("create http server: %w", err)
	}

	srv.StatsServer, err = stats.NewStatsServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create stats server: %w", err)
	}

	return srv, nil
}

// Start starts the server.
func (s *Server) Start() error {
	errg, _ := errgroup.WithContext(s.ctx)

	errg.Go(func() error {
		s.logger.Print("Starting HTTP server", "addr", s.Config.HTTP.ListenAddr)
		if s.Config.HTTP.TLSCertPath == "" || s.Config.HTTP.TLSKeyPath == "" {
			s.logger.Warn("serving git over plain HTTP, credentials travel unencrypted")
		}
		if err := s.HTTPServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// optionally start the Stats server
	if s.Config.Stats.Enabled {
		errg.Go(func() error {
			s.logger.Print("Starting Stats server", "addr", s.Config.Stats.ListenAddr)
			if err := s.StatsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	errg.Go(func() error {
		s.Cron.Start()
		return nil
	})
	return errg.Wait()
}

// Shutdown lets the server gracefully shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return s.HTTPServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		return s.StatsServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		for _, j := range jobs.List() {
			s.Cron.Remove(j.ID)
		}
		s.Cron.Shutdown()
		return nil
	})
	return errg.Wait()
}

// Close closes the server.
func (s *Server) Close() error {
	var errg errgroup.Group
	errg.Go(s.HTTPServer.Close)
	errg.Go(s.StatsServer.Close)
	errg.Go(func() error {
		s.Cron.Stop()
		return nil
	})
	return errg.Wait()
}
