// Package app wires the configuration, repository, metrics sinks and planner
// into a runnable service.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/velosched/velosched/config"
	coremetrics "github.com/velosched/velosched/core/metrics"
	"github.com/velosched/velosched/core/model"
	"github.com/velosched/velosched/core/planner"
	"github.com/velosched/velosched/core/repository"
	"github.com/velosched/velosched/infra/logger"
	"github.com/velosched/velosched/infra/metrics"
	"github.com/velosched/velosched/infra/store"
	"github.com/velosched/velosched/internal/eventbus"
)

// Service orchestrates the planner, storage and metrics sinks.
type Service struct {
	Planner *planner.Planner
	Repo    repository.Repository

	bus         eventbus.EventBus
	sink        coremetrics.Sink
	log         logger.Logger
	cfg         *config.Config
	closers     []func() error
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg.Logging.Format == "console" {
		os.Setenv("APP_ENV", "dev")
	}
	logg := logger.NewZerologLoggerWithLevel("service", logger.ParseLevel(cfg.Logging.Level))

	svc := &Service{
		log:         logg,
		cfg:         cfg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	repo, err := svc.buildStore(cfg)
	if err != nil {
		return nil, err
	}
	svc.Repo = repo

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		sinks = append(sinks, sink)
		if c, ok := sink.(*metrics.InfluxSink); ok {
			svc.closers = append(svc.closers, func() error { c.Close(); return nil })
		}
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	svc.bus = bus

	pl, err := planner.New(repo, cfg.Partition, logg, sink, bus)
	if err != nil {
		return nil, err
	}
	svc.Planner = pl

	svc.sink = sink
	return svc, nil
}

func (s *Service) buildStore(cfg *config.Config) (repository.Repository, error) {
	switch cfg.Storage.Backend {
	case "memory":
		m := store.NewMemory()
		m.SetSeasonSettings(cfg.Season)
		return m, nil
	case "sqlite":
		db, err := store.NewSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		if seasonConfigured(cfg.Season) {
			if err := db.SetSeasonSettings(context.Background(), cfg.Season); err != nil {
				return nil, fmt.Errorf("seed season settings: %w", err)
			}
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown storage backend %s", cfg.Storage.Backend)
}

func seasonConfigured(s model.SeasonSettings) bool {
	return len(s.Rules) > 0 || s.Window.IsSet()
}

// Run starts the service and blocks until the context is cancelled. A
// materializer pass runs on start when configured, then on the configured
// interval.
func (s *Service) Run(ctx context.Context) error {
	if s.sink != nil {
		metrics.StartEventCollector(ctx, s.bus, s.sink)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if s.cfg.Schedule.MaterializeOnStart {
		if _, err := s.Planner.Materialize(ctx); err != nil {
			s.log.Errorf("materialize on start: %v", err)
		}
	}
	if s.cfg.Schedule.IntervalSeconds > 0 {
		ticker := time.NewTicker(time.Duration(s.cfg.Schedule.IntervalSeconds) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := s.Planner.Materialize(ctx); err != nil {
					s.log.Errorf("materialize: %v", err)
				}
			}
		}
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bus != nil {
		s.bus.Close()
	}
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
