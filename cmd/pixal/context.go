package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pixal/internal/config"
	"pixal/internal/ledger"
	"pixal/internal/logging"
	"pixal/internal/pipeline"
	"pixal/internal/preflight"
	"pixal/internal/services"
	"pixal/internal/workspace"
)

type commandContext struct {
	configFlag string
	logLevel   string
	logFormat  string

	// pipelineOptions are appended to every runner the CLI builds.
	pipelineOptions []pipeline.Option

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.logLevel); level != "" {
			cfg.Logging.Level = level
		}
		if format := strings.TrimSpace(c.logFormat); format != "" {
			cfg.Logging.Format = format
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// session bundles what run and step need: config, logger, the workspace lock
// and an advisory ledger.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *workspace.Lock
	ledger *ledger.Store
}

func (s *session) Close() {
	if s.ledger != nil {
		_ = s.ledger.Close()
	}
	if s.lock != nil {
		_ = s.lock.Release()
	}
}

func (s *session) runner(opts ...pipeline.Option) *pipeline.Runner {
	all := make([]pipeline.Option, 0, len(opts)+1)
	if s.ledger != nil {
		all = append(all, pipeline.WithLedger(s.ledger))
	}
	all = append(all, opts...)
	return pipeline.New(s.cfg, s.logger, all...)
}

// openSession enforces the doctor gate, then takes the workspace lock.
func (c *commandContext) openSession(ctx context.Context) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if err := requireDoctor(ctx, cfg); err != nil {
		return nil, err
	}

	lock, err := workspace.AcquireLock(cfg)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, lock: lock}

	store, err := ledger.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "run ledger unavailable", "ledger_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this invocation will not appear in status history"),
		)
	} else {
		s.ledger = store
	}
	return s, nil
}

func requireDoctor(ctx context.Context, cfg *config.Config) error {
	report := preflight.RunAll(ctx, cfg, preflight.Options{})
	if report.OK() {
		return nil
	}
	names := make([]string, 0, len(report.Failures()))
	for _, failed := range report.Failures() {
		names = append(names, failed.Name)
	}
	return services.Wrap(services.ErrConfiguration, "", "doctor",
		fmt.Sprintf("required checks failed (%s); run `pixal doctor` for details", strings.Join(names, ", ")), nil)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
