package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/marketinghub/internal/entity"
)

// memLeadRepo guarda leads em memória, isolados por UserID.
type memLeadRepo struct {
	mu         sync.Mutex
	leads      []entity.Lead
	listErrFor map[string]error
}

func (r *memLeadRepo) add(leads ...entity.Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, leads...)
}

func (r *memLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	r.add(*lead)
	return nil
}

func (r *memLeadRepo) Update(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leads {
		if r.leads[i].ID == lead.ID && r.leads[i].UserID == lead.UserID {
			r.leads[i] = *lead
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *memLeadRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leads {
		if r.leads[i].ID == id && r.leads[i].UserID == userID {
			r.leads = append(r.leads[:i], r.leads[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *memLeadRepo) FindByID(ctx context.Context, id, userID string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leads {
		if l.ID == id && l.UserID == userID {
			found := l
			return &found, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *memLeadRepo) ListByUser(ctx context.Context, userID string) ([]entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.listErrFor[userID]; err != nil {
		return nil, err
	}
	var out []entity.Lead
	for _, l := range r.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type memAutomationRepo struct {
	mu          sync.Mutex
	automations []entity.Automation
	listErr     error
}

func (r *memAutomationRepo) add(items ...entity.Automation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.automations = append(r.automations, items...)
}

func (r *memAutomationRepo) Create(ctx context.Context, a *entity.Automation) error {
	r.add(*a)
	return nil
}

func (r *memAutomationRepo) Update(ctx context.Context, a *entity.Automation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.automations {
		if r.automations[i].ID == a.ID && r.automations[i].UserID == a.UserID {
			r.automations[i] = *a
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *memAutomationRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.automations {
		if r.automations[i].ID == id && r.automations[i].UserID == userID {
			r.automations = append(r.automations[:i], r.automations[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *memAutomationRepo) FindByID(ctx context.Context, id, userID string) (*entity.Automation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.automations {
		if a.ID == id && a.UserID == userID {
			found := a
			return &found, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *memAutomationRepo) ListByUser(ctx context.Context, userID string) ([]entity.Automation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Automation
	for _, a := range r.automations {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAutomationRepo) ListActive(ctx context.Context, userID *string) ([]entity.Automation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []entity.Automation
	for _, a := range r.automations {
		if a.Status != entity.AutomationActive {
			continue
		}
		if userID != nil && a.UserID != *userID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type pairKey struct{ automationID, leadID string }

// memLogRepo mantém no máximo uma linha por (automation, lead), como a
// constraint do banco.
type memLogRepo struct {
	mu           sync.Mutex
	rows         map[pairKey]entity.EmailLog
	existsErrFor map[string]error // por lead
	recordErr    error
	// blindExists faz Exists responder false sempre, simulando outro sweep
	// que grava entre a checagem e o insert.
	blindExists bool
}

func newMemLogRepo() *memLogRepo {
	return &memLogRepo{rows: make(map[pairKey]entity.EmailLog)}
}

func (r *memLogRepo) Exists(ctx context.Context, automationID, leadID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.existsErrFor[leadID]; err != nil {
		return false, err
	}
	if r.blindExists {
		return false, nil
	}
	_, ok := r.rows[pairKey{automationID, leadID}]
	return ok, nil
}

func (r *memLogRepo) Record(ctx context.Context, log *entity.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	key := pairKey{*log.AutomationID, *log.LeadID}
	if _, ok := r.rows[key]; ok {
		return entity.ErrAlreadyRecorded
	}
	r.rows[key] = *log
	return nil
}

func (r *memLogRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *memLogRepo) get(automationID, leadID string) (entity.EmailLog, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[pairKey{automationID, leadID}]
	return row, ok
}

// fakeTransport registra mensagens e falha por destinatário quando pedido.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []Message
	failFor map[string]error
	// hang espera o ctx expirar; lateOK então responde sucesso mesmo assim.
	hang   bool
	lateOK bool
}

func (f *fakeTransport) Send(ctx context.Context, msg Message) error {
	if f.hang {
		<-ctx.Done()
		if f.lateOK {
			return nil
		}
		return ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[msg.To]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

func (f *fakeTransport) setFailure(to string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failFor, to)
		return
	}
	if f.failFor == nil {
		f.failFor = make(map[string]error)
	}
	f.failFor[to] = err
}

type fakeMetrics struct {
	mu     sync.Mutex
	pairs  map[string]int
	sent   map[string]int
	sweeps int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{pairs: map[string]int{}, sent: map[string]int{}}
}

func (m *fakeMetrics) RecordEmailSent(trigger string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[trigger]++
}

func (m *fakeMetrics) RecordPair(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[result]++
}

func (m *fakeMetrics) ObserveSweep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
}

// MockSweepPublisher
type MockSweepPublisher struct {
	mock.Mock
}

func (m *MockSweepPublisher) PublishSweepRequest(ctx context.Context, req SweepRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockAdPlatform
type MockAdPlatform struct {
	mock.Mock
	name            string
	requiresRefresh bool
}

func (m *MockAdPlatform) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockAdPlatform) Exchange(ctx context.Context, code string) (*entity.OAuthToken, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OAuthToken), args.Error(1)
}

func (m *MockAdPlatform) Refresh(ctx context.Context, token *entity.OAuthToken) (*entity.OAuthToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OAuthToken), args.Error(1)
}

func (m *MockAdPlatform) FetchCampaigns(ctx context.Context, token *entity.OAuthToken, start, end time.Time) ([]entity.CampaignMetric, error) {
	args := m.Called(ctx, token, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CampaignMetric), args.Error(1)
}

func (m *MockAdPlatform) RequiresRefreshToken() bool { return m.requiresRefresh }
func (m *MockAdPlatform) DisplayName() string        { return m.name }

// MockTokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Upsert(ctx context.Context, token *entity.OAuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByProvider(ctx context.Context, userID string, provider entity.Platform) (*entity.OAuthToken, error) {
	args := m.Called(ctx, userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OAuthToken), args.Error(1)
}

func (m *MockTokenRepository) ListByUser(ctx context.Context, userID string) ([]entity.OAuthToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.OAuthToken), args.Error(1)
}

// MockCampaignCache
type MockCampaignCache struct {
	mock.Mock
}

func (m *MockCampaignCache) Get(ctx context.Context, key string) ([]entity.CampaignMetric, bool, error) {
	args := m.Called(ctx, key)
	rows, _ := args.Get(0).([]entity.CampaignMetric)
	return rows, args.Bool(1), args.Error(2)
}

func (m *MockCampaignCache) Set(ctx context.Context, key string, rows []entity.CampaignMetric, ttl time.Duration) error {
	args := m.Called(ctx, key, rows, ttl)
	return args.Error(0)
}

// MockCampaignDataRepository
type MockCampaignDataRepository struct {
	mock.Mock
}

func (m *MockCampaignDataRepository) SaveBatch(ctx context.Context, userID string, platform entity.Platform, rows []entity.CampaignMetric, fetchedAt time.Time) error {
	args := m.Called(ctx, userID, platform, rows, fetchedAt)
	return args.Error(0)
}

func intPtr(v int) *int { return &v }

func statusPtr(s entity.LeadStatus) *entity.LeadStatus { return &s }
