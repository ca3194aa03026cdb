package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

// AllTenantsSweeper roda a varredura completa.
type AllTenantsSweeper interface {
	ExecuteAll(ctx context.Context, now time.Time) (*usecase.SweepReport, error)
}

// AutomationScheduler dispara a varredura de automações num cron.
// Uma execução ainda em curso faz a próxima ser pulada.
type AutomationScheduler struct {
	cron    *cron.Cron
	sweeper AllTenantsSweeper
	logger  logrus.FieldLogger
	timeout time.Duration
	now     func() time.Time

	// ctx dos jobs do cron; Start cancela ao desligar.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewAutomationScheduler(sweeper AllTenantsSweeper, logger logrus.FieldLogger, loc *time.Location, timeout time.Duration) *AutomationScheduler {
	if loc == nil {
		loc = time.UTC
	}
	cronLogger := cron.PrintfLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	return &AutomationScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		sweeper: sweeper,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Schedule registra a varredura, ex.: "@every 1h" ou "0 8 * * *".
func (s *AutomationScheduler) Schedule(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		return fmt.Errorf("invalid automation schedule %q: %w", spec, err)
	}
	s.logger.WithField("schedule", spec).Info("automation sweep scheduled")
	return nil
}

// Start roda o cron até ctx ser cancelado. A varredura em curso recebe o
// cancelamento e para entre um par e outro; Start espera ela terminar.
func (s *AutomationScheduler) Start(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	s.logger.Info("automation scheduler stopping")
	s.cancel()
	<-s.cron.Stop().Done()
}

// RunOnce roda uma varredura com o timeout do scheduler. Um relatório
// parcial volta junto com o erro.
func (s *AutomationScheduler) RunOnce(ctx context.Context) *usecase.SweepReport {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := s.now()
	report, err := s.sweeper.ExecuteAll(ctx, started)
	if report == nil {
		s.logger.WithError(err).Error("automation sweep failed")
		return nil
	}

	log := s.logger.WithFields(logrus.Fields{
		"tenants":  len(report.Tenants),
		"aborted":  len(report.Aborted),
		"matched":  report.Totals.Matched,
		"sent":     report.Totals.Sent,
		"skipped":  report.Totals.Skipped,
		"errored":  report.Totals.Errored,
		"duration": time.Since(started).String(),
	})
	if err != nil {
		log.WithError(err).Error("automation sweep interrupted")
		return report
	}
	log.Info("automation sweep finished")
	return report
}
