package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/marketinghub/internal/entity"
)

var sweepDay = time.Date(2026, 3, 13, 9, 30, 0, 0, time.UTC)

type sweepFixture struct {
	leads       *memLeadRepo
	automations *memAutomationRepo
	logs        *memLogRepo
	transport   *fakeTransport
	metrics     *fakeMetrics
	uc          *SweepAutomationsUseCase
}

func newSweepFixture() *sweepFixture {
	logger, _ := test.NewNullLogger()

	f := &sweepFixture{
		leads:       &memLeadRepo{},
		automations: &memAutomationRepo{},
		logs:        newMemLogRepo(),
		transport:   &fakeTransport{},
		metrics:     newFakeMetrics(),
	}
	dispatcher := NewDispatcher(f.transport, f.logs, "team@marketinghub.test", time.Second)
	dispatcher.Now = func() time.Time { return sweepDay }

	f.uc = NewSweepAutomationsUseCase(f.automations, f.leads, f.logs, dispatcher, logger)
	f.uc.Metrics = f.metrics
	return f
}

func lead(id, userID, email string, status entity.LeadStatus, created time.Time) entity.Lead {
	return entity.Lead{ID: id, UserID: userID, Name: "Lead " + id, Email: email, Status: status, CreatedAt: created}
}

func statusRule(id, userID string, status entity.LeadStatus) entity.Automation {
	return entity.Automation{
		ID: id, UserID: userID, Name: "rule " + id,
		TriggerType: entity.TriggerStatus, TriggerStatus: statusPtr(status),
		EmailSubject: "Hi {{name}}", EmailBody: "You are {{status}}",
		Status: entity.AutomationActive,
	}
}

func timeRule(id, userID string, days int) entity.Automation {
	return entity.Automation{
		ID: id, UserID: userID, Name: "rule " + id,
		TriggerType: entity.TriggerTime, DelayDays: intPtr(days),
		EmailSubject: "Welcome {{name}}", EmailBody: "Day {{status}}",
		Status: entity.AutomationActive,
	}
}

func TestMatches(t *testing.T) {
	created := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	l := lead("l1", "u1", "a@x.com", entity.LeadStatusNew, created)
	threeDays := timeRule("a1", "u1", 3)

	tests := []struct {
		name    string
		rule    entity.Automation
		lead    entity.Lead
		now     time.Time
		catchUp bool
		want    bool
	}{
		{"due day just after midnight", threeDays, l, time.Date(2026, 3, 13, 0, 5, 0, 0, time.UTC), false, true},
		{"due day late evening", threeDays, l, time.Date(2026, 3, 13, 23, 59, 0, 0, time.UTC), false, true},
		{"day before due", threeDays, l, time.Date(2026, 3, 12, 23, 59, 0, 0, time.UTC), false, false},
		{"day after due", threeDays, l, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), false, false},
		{"catch-up after due", threeDays, l, time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC), true, true},
		{"catch-up before due", threeDays, l, time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC), true, false},
		{"zero delay same day", timeRule("a0", "u1", 0), l, time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), false, true},
		{"status equal", statusRule("s1", "u1", entity.LeadStatusNew), l, sweepDay, false, true},
		{"status different", statusRule("s1", "u1", entity.LeadStatusWon), l, sweepDay, false, false},
		{"other owner", statusRule("s1", "u2", entity.LeadStatusNew), l, sweepDay, false, false},
		{"no email", statusRule("s1", "u1", entity.LeadStatusNew), lead("l2", "u1", "  ", entity.LeadStatusNew, created), sweepDay, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(&tt.rule, &tt.lead, tt.now, time.UTC, tt.catchUp))
		})
	}
}

func TestMatches_UsesCalendarOfLocation(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	// 02:00 UTC é 23:00 do dia anterior em BRT.
	created := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	l := lead("l1", "u1", "a@x.com", entity.LeadStatusNew, created)
	rule := timeRule("a1", "u1", 1)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, Matches(&rule, &l, now, brt, false))
	assert.False(t, Matches(&rule, &l, now, time.UTC, false))
}

func TestSweep_StatusRuleSendsOncePerPair(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusQualified))
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusQualified, sweepDay.AddDate(0, 0, -10)))

	first, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Matched)
	assert.Equal(t, 1, first.Sent)

	second, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Matched)
	assert.Equal(t, 0, second.Sent)
	assert.Equal(t, 1, second.Skipped)

	msgs := f.transport.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ana@x.com", msgs[0].To)
	assert.Equal(t, "Hi Lead l1", msgs[0].Subject)
	assert.Equal(t, "You are qualified", msgs[0].Body)

	row, ok := f.logs.get("a1", "l1")
	require.True(t, ok)
	assert.Equal(t, "team@marketinghub.test", row.Sender)
	assert.Equal(t, sweepDay, row.SentAt)
}

func TestSweep_TimeRuleOnlyOnDueDay(t *testing.T) {
	f := newSweepFixture()
	created := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	f.automations.add(timeRule("a1", "u1", 3))
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, created))

	before, err := f.uc.ExecuteTenant(context.Background(), "u1", created.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, before.Matched)

	due, err := f.uc.ExecuteTenant(context.Background(), "u1", time.Date(2026, 3, 13, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, due.Sent)

	after, err := f.uc.ExecuteTenant(context.Background(), "u1", created.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, after.Matched)

	assert.Len(t, f.transport.messages(), 1)
}

func TestSweep_CatchUpSendsMissedTimeRuleOnce(t *testing.T) {
	f := newSweepFixture()
	f.uc.TimeCatchUp = true
	f.automations.add(timeRule("a1", "u1", 2))
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, sweepDay.AddDate(0, 0, -9)))

	first, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)

	second, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, f.transport.messages(), 1)
}

func TestSweep_LeadWithoutEmailIsNeverDispatched(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusNew), timeRule("a2", "u1", 0))
	f.leads.add(lead("l1", "u1", "", entity.LeadStatusNew, sweepDay))

	summary, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Matched)
	assert.Empty(t, f.transport.messages())
	assert.Equal(t, 0, f.logs.count())
}

func TestSweep_TransportFailureLeavesPairEligible(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusNew))
	f.leads.add(
		lead("l1", "u1", "down@x.com", entity.LeadStatusNew, sweepDay),
		lead("l2", "u1", "ok@x.com", entity.LeadStatusNew, sweepDay),
	)
	f.transport.setFailure("down@x.com", errors.New("smtp 451"))

	summary, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Matched)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Errored)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "l1", summary.Failures[0].LeadID)
	assert.Equal(t, "dispatch", summary.Failures[0].Stage)

	_, logged := f.logs.get("a1", "l1")
	assert.False(t, logged)

	f.transport.setFailure("down@x.com", nil)
	retry, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Sent)
	assert.Equal(t, 1, retry.Skipped)
	assert.Equal(t, 2, f.logs.count())
}

func TestSweep_CrossTenantIsolation(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "tenant-a", entity.LeadStatusNew))
	// Mesmo ID de lead nos dois tenants.
	f.leads.add(
		lead("shared", "tenant-b", "b@x.com", entity.LeadStatusNew, sweepDay),
		lead("shared", "tenant-a", "a@x.com", entity.LeadStatusContacted, sweepDay),
	)

	report, err := f.uc.ExecuteAll(context.Background(), sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Totals.Matched)
	assert.Empty(t, f.transport.messages())

	tenantB, err := f.uc.ExecuteTenant(context.Background(), "tenant-b", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 0, tenantB.Rules)
	assert.Empty(t, f.transport.messages())
}

func TestSweep_InvalidRuleIsSkipped(t *testing.T) {
	f := newSweepFixture()
	broken := timeRule("broken", "u1", 0)
	broken.DelayDays = nil
	noStatus := statusRule("nostatus", "u1", entity.LeadStatusNew)
	noStatus.TriggerStatus = nil
	f.automations.add(broken, noStatus, statusRule("a1", "u1", entity.LeadStatusNew))
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, sweepDay))

	summary, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rules)
	assert.Equal(t, 2, summary.InvalidRules)
	assert.Equal(t, 1, summary.Sent)
}

func TestSweep_PausedRuleIsIgnored(t *testing.T) {
	f := newSweepFixture()
	paused := statusRule("a1", "u1", entity.LeadStatusNew)
	paused.Status = entity.AutomationPaused
	f.automations.add(paused)
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, sweepDay))

	summary, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rules)
	assert.Empty(t, f.transport.messages())
}

func TestSweep_LogLookupFailureIsPartial(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusNew))
	f.leads.add(
		lead("l1", "u1", "one@x.com", entity.LeadStatusNew, sweepDay),
		lead("l2", "u1", "two@x.com", entity.LeadStatusNew, sweepDay),
	)
	f.logs.existsErrFor = map[string]error{"l1": errors.New("connection reset")}

	summary, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errored)
	assert.Equal(t, 1, summary.Sent)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "lookup", summary.Failures[0].Stage)
	assert.Contains(t, summary.Failures[0].Error, "connection reset")
}

func TestSweep_ConcurrentRecordCountsAsSent(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusNew))
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, sweepDay))
	require.NoError(t, f.logs.Record(context.Background(),
		entity.NewAutomationEmailLog("a1", "l1", "ana@x.com", "s", "b", "other", sweepDay)))
	f.logs.blindExists = true

	summary, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 0, summary.Errored)
	assert.Equal(t, 1, f.logs.count())
}

func TestSweep_RecordFailureIsReported(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusNew))
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, sweepDay))
	f.logs.recordErr = errors.New("disk full")

	summary, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errored)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "record", summary.Failures[0].Stage)
}

func TestSweep_LeadListFailureAbortsTenant(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusNew))
	f.leads.listErrFor = map[string]error{"u1": errors.New("timeout")}

	_, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
}

func TestSweepAll_FailedTenantDoesNotStopOthers(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(
		statusRule("a1", "tenant-a", entity.LeadStatusNew),
		statusRule("b1", "tenant-b", entity.LeadStatusNew),
	)
	f.leads.add(
		lead("la", "tenant-a", "a@x.com", entity.LeadStatusNew, sweepDay),
		lead("lb", "tenant-b", "b@x.com", entity.LeadStatusNew, sweepDay),
	)
	f.leads.listErrFor = map[string]error{"tenant-a": errors.New("replica lag")}

	report, err := f.uc.ExecuteAll(context.Background(), sweepDay)
	require.NoError(t, err)
	require.Len(t, report.Aborted, 1)
	assert.Equal(t, "tenant-a", report.Aborted[0].UserID)
	require.Len(t, report.Tenants, 2)
	assert.Equal(t, "tenant-a", report.Tenants[0].UserID)
	assert.Equal(t, "tenant-b", report.Tenants[1].UserID)
	assert.Equal(t, 1, report.Totals.Sent)

	msgs := f.transport.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "b@x.com", msgs[0].To)

	assert.Equal(t, 1, f.metrics.sweeps)
	assert.Equal(t, 1, f.metrics.pairs[PairSent])
	assert.Equal(t, 1, f.metrics.sent[string(entity.TriggerStatus)])
}

func TestSweepAll_AutomationListFailure(t *testing.T) {
	f := newSweepFixture()
	f.automations.listErr = errors.New("db down")

	report, err := f.uc.ExecuteAll(context.Background(), sweepDay)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
}

func TestSweep_CancelledContextStopsBetweenPairs(t *testing.T) {
	f := newSweepFixture()
	f.automations.add(statusRule("a1", "u1", entity.LeadStatusNew))
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, sweepDay))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.uc.ExecuteTenant(ctx, "u1", sweepDay)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.Sent)
	assert.Empty(t, f.transport.messages())
}

func TestSweep_LogsInvalidRule(t *testing.T) {
	f := newSweepFixture()
	logger, hook := test.NewNullLogger()
	f.uc.Logger = logger

	broken := timeRule("broken", "u1", 0)
	broken.DelayDays = nil
	f.automations.add(broken)
	f.leads.add(lead("l1", "u1", "ana@x.com", entity.LeadStatusNew, sweepDay))

	_, err := f.uc.ExecuteTenant(context.Background(), "u1", sweepDay)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "broken", entry.Data["automation_id"])
}
