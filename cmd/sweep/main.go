// Command sweep roda a varredura de automações uma vez em todos os tenants e
// imprime o relatório em JSON. Sai com código 1 quando a varredura não
// começa, é interrompida ou aborta algum tenant.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/marketinghub/internal/config"
	"github.com/xavierca1/marketinghub/internal/infra/database"
	"github.com/xavierca1/marketinghub/internal/infra/http/middleware"
	"github.com/xavierca1/marketinghub/internal/infra/mail"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

func main() {
	os.Exit(run())
}

// run devolve o código de saída; os defers rodam antes do os.Exit.
func run() int {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)
	// stdout fica só com o relatório.
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		config.LogError(logger, "sweep", "main", "connecting to database", nil, err)
		return 1
	}
	defer db.Close()

	transport := mail.NewTransport(mail.Config{
		Host:           cfg.Mail.Host,
		Port:           cfg.Mail.Port,
		User:           cfg.Mail.User,
		Password:       cfg.Mail.Password,
		From:           cfg.Mail.From,
		FromName:       cfg.Mail.FromName,
		SendGridAPIKey: cfg.Mail.SendGridAPIKey,
	}, logger)

	logRepo := database.NewEmailLogRepository(db)
	dispatcher := usecase.NewDispatcher(transport, logRepo, cfg.Mail.From, cfg.Automation.SendTimeout)

	uc := usecase.NewSweepAutomationsUseCase(
		database.NewAutomationRepository(db),
		database.NewLeadRepository(db),
		logRepo,
		dispatcher,
		logger,
	)
	uc.Location = cfg.Automation.Location
	uc.TimeCatchUp = cfg.Automation.TimeCatchUp
	uc.TenantConcurrency = cfg.Automation.TenantConcurrency
	uc.Metrics = middleware.PrometheusRecorder{}

	report, err := uc.ExecuteAll(ctx, time.Now())
	if report == nil {
		config.LogError(logger, "sweep", "main", "running sweep", nil, err)
		return exitCode(report, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)

	if err != nil {
		config.LogError(logger, "sweep", "main", "sweep interrupted", report.Totals, err)
	}
	return exitCode(report, err)
}

func exitCode(report *usecase.SweepReport, err error) int {
	if report == nil || err != nil || len(report.Aborted) > 0 {
		return 1
	}
	return 0
}
