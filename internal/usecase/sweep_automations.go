package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/marketinghub/internal/entity"
)

const (
	PairSent    = "sent"
	PairSkipped = "skipped"
	PairErrored = "errored"
)

// PairFailure descreve um par (automation, lead) que não foi concluído
// nesta varredura. Stage é "lookup", "dispatch" ou "record".
type PairFailure struct {
	AutomationID string `json:"automation_id"`
	LeadID       string `json:"lead_id"`
	Stage        string `json:"stage"`
	Error        string `json:"error"`
}

type SweepSummary struct {
	UserID       string        `json:"user_id,omitempty"`
	Rules        int           `json:"rules"`
	InvalidRules int           `json:"invalid_rules"`
	Matched      int           `json:"matched"`
	Sent         int           `json:"sent"`
	Skipped      int           `json:"skipped"`
	Errored      int           `json:"errored"`
	Failures     []PairFailure `json:"failures,omitempty"`
}

func (s *SweepSummary) add(o SweepSummary) {
	s.Rules += o.Rules
	s.InvalidRules += o.InvalidRules
	s.Matched += o.Matched
	s.Sent += o.Sent
	s.Skipped += o.Skipped
	s.Errored += o.Errored
	s.Failures = append(s.Failures, o.Failures...)
}

type TenantFailure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// SweepReport agrega a varredura de todos os tenants.
type SweepReport struct {
	Tenants []SweepSummary  `json:"tenants"`
	Aborted []TenantFailure `json:"aborted,omitempty"`
	Totals  SweepSummary    `json:"totals"`
}

type SweepAutomationsUseCase struct {
	AutomationRepo entity.AutomationRepositoryInterface
	LeadRepo       entity.LeadRepositoryInterface
	EmailLogRepo   entity.EmailLogRepositoryInterface
	Dispatcher     *Dispatcher
	Metrics        AutomationMetrics
	Logger         logrus.FieldLogger

	// Location define o calendário dos gatilhos por tempo.
	Location *time.Location
	// TimeCatchUp casa regras de tempo em qualquer dia a partir do dia
	// devido, e não só no próprio dia.
	TimeCatchUp bool
	// TenantConcurrency limita quantos tenants o ExecuteAll varre ao mesmo tempo.
	TenantConcurrency int
}

func NewSweepAutomationsUseCase(
	automationRepo entity.AutomationRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	logRepo entity.EmailLogRepositoryInterface,
	dispatcher *Dispatcher,
	logger logrus.FieldLogger,
) *SweepAutomationsUseCase {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SweepAutomationsUseCase{
		AutomationRepo:    automationRepo,
		LeadRepo:          leadRepo,
		EmailLogRepo:      logRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
		Location:          time.UTC,
		TenantConcurrency: 4,
	}
}

// ExecuteTenant varre um único dono. Só falha quando não dá para listar as
// automações ou os leads dele; falhas por par vão no resumo. Com o ctx
// cancelado a varredura para entre pares e devolve o resumo parcial junto
// com ctx.Err().
func (uc *SweepAutomationsUseCase) ExecuteTenant(ctx context.Context, userID string, now time.Time) (*SweepSummary, error) {
	automations, err := uc.AutomationRepo.ListActive(ctx, &userID)
	if err != nil {
		return nil, &TechnicalError{Code: "AUTOMATIONS_UNAVAILABLE", Message: "failed to list automations", Err: err}
	}
	return uc.sweepTenant(ctx, userID, automations, now)
}

// ExecuteAll varre todo dono com pelo menos uma automação ativa.
func (uc *SweepAutomationsUseCase) ExecuteAll(ctx context.Context, now time.Time) (*SweepReport, error) {
	started := time.Now()
	defer func() {
		if uc.Metrics != nil {
			uc.Metrics.ObserveSweep(time.Since(started))
		}
	}()

	automations, err := uc.AutomationRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, &TechnicalError{Code: "AUTOMATIONS_UNAVAILABLE", Message: "failed to list automations", Err: err}
	}

	byOwner := make(map[string][]entity.Automation)
	for _, a := range automations {
		byOwner[a.UserID] = append(byOwner[a.UserID], a)
	}

	owners := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	limit := uc.TenantConcurrency
	if limit <= 0 {
		limit = 1
	}

	var (
		mu     sync.Mutex
		report SweepReport
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for _, owner := range owners {
		rules := byOwner[owner]
		eg.Go(func() error {
			summary, err := uc.sweepTenant(egCtx, owner, rules, now)

			mu.Lock()
			defer mu.Unlock()
			if summary != nil {
				report.Tenants = append(report.Tenants, *summary)
				report.Totals.add(*summary)
			}
			if err != nil {
				report.Aborted = append(report.Aborted, TenantFailure{UserID: owner, Error: err.Error()})
			}
			// Um tenant com falha não cancela os outros.
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(report.Tenants, func(i, j int) bool { return report.Tenants[i].UserID < report.Tenants[j].UserID })
	sort.Slice(report.Aborted, func(i, j int) bool { return report.Aborted[i].UserID < report.Aborted[j].UserID })

	uc.Logger.WithFields(logrus.Fields{
		"tenants": len(owners),
		"aborted": len(report.Aborted),
		"matched": report.Totals.Matched,
		"sent":    report.Totals.Sent,
		"skipped": report.Totals.Skipped,
		"errored": report.Totals.Errored,
	}).Info("automation sweep finished")

	return &report, ctx.Err()
}

func (uc *SweepAutomationsUseCase) sweepTenant(ctx context.Context, userID string, automations []entity.Automation, now time.Time) (*SweepSummary, error) {
	summary := &SweepSummary{UserID: userID}
	if len(automations) == 0 {
		return summary, nil
	}

	leads, err := uc.LeadRepo.ListByUser(ctx, userID)
	if err != nil {
		return summary, &TechnicalError{Code: "LEADS_UNAVAILABLE", Message: "failed to list leads", Err: err}
	}

	log := uc.Logger.WithField("user_id", userID)

	for i := range automations {
		a := &automations[i]
		if a.UserID != userID || !a.IsActive() {
			continue
		}
		summary.Rules++

		if err := a.CheckTrigger(); err != nil {
			summary.InvalidRules++
			log.WithFields(logrus.Fields{"automation_id": a.ID, "reason": err.Error()}).Warn("skipping invalid automation")
			continue
		}

		for j := range leads {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			lead := &leads[j]
			if !Matches(a, lead, now, uc.location(), uc.TimeCatchUp) {
				continue
			}
			summary.Matched++

			result := uc.dispatchPair(ctx, a, lead, summary, log)
			if uc.Metrics != nil {
				uc.Metrics.RecordPair(result)
				if result == PairSent {
					uc.Metrics.RecordEmailSent(string(a.TriggerType))
				}
			}
		}
	}

	return summary, nil
}

func (uc *SweepAutomationsUseCase) dispatchPair(ctx context.Context, a *entity.Automation, lead *entity.Lead, summary *SweepSummary, log logrus.FieldLogger) string {
	pairLog := log.WithFields(logrus.Fields{"automation_id": a.ID, "lead_id": lead.ID})

	// Confere o log imediatamente antes do envio.
	sent, err := uc.EmailLogRepo.Exists(ctx, a.ID, lead.ID)
	if err != nil {
		uc.fail(summary, a, lead, "lookup", err)
		pairLog.WithError(err).Error("send log lookup failed")
		return PairErrored
	}
	if sent {
		summary.Skipped++
		return PairSkipped
	}

	err = uc.Dispatcher.Deliver(ctx, a, lead)

	var recErr *RecordError
	switch {
	case err == nil:
		summary.Sent++
		pairLog.Info("automation email sent")
		return PairSent
	case errors.Is(err, entity.ErrAlreadyRecorded):
		// Outra varredura gravou o par entre a checagem e o insert.
		summary.Sent++
		pairLog.Warn("automation email sent concurrently by another sweep")
		return PairSent
	case errors.As(err, &recErr):
		uc.fail(summary, a, lead, "record", err)
		pairLog.WithError(err).Error("automation email sent but not recorded")
		return PairErrored
	default:
		uc.fail(summary, a, lead, "dispatch", err)
		pairLog.WithError(err).Error("automation email dispatch failed")
		return PairErrored
	}
}

func (uc *SweepAutomationsUseCase) fail(summary *SweepSummary, a *entity.Automation, lead *entity.Lead, stage string, err error) {
	summary.Errored++
	summary.Failures = append(summary.Failures, PairFailure{
		AutomationID: a.ID,
		LeadID:       lead.ID,
		Stage:        stage,
		Error:        err.Error(),
	})
}

func (uc *SweepAutomationsUseCase) location() *time.Location {
	if uc.Location == nil {
		return time.UTC
	}
	return uc.Location
}

// Matches diz se o lead satisfaz o gatilho de a no instante now. Lead de
// outro dono ou sem email nunca casa. A regra já deve ter passado pelo
// CheckTrigger.
func Matches(a *entity.Automation, lead *entity.Lead, now time.Time, loc *time.Location, catchUp bool) bool {
	if lead.UserID != a.UserID || !lead.HasEmail() {
		return false
	}

	switch a.TriggerType {
	case entity.TriggerTime:
		if a.DelayDays == nil {
			return false
		}
		due := civilDate(lead.CreatedAt, loc).AddDate(0, 0, *a.DelayDays)
		today := civilDate(now, loc)
		if catchUp {
			return !today.Before(due)
		}
		return today.Equal(due)
	case entity.TriggerStatus:
		return a.TriggerStatus != nil && lead.Status == *a.TriggerStatus
	}
	return false
}

// civilDate descarta o horário de t, visto em loc.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
