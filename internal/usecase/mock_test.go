//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/domain/ports/repository"
)

// =============================
// Adapters
// =============================

// ---- Mock TelegramBotAdapter ----

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []adapter.SendMessageParams
	Docs []adapter.DocumentParams

	SendMessageFunc  func(ctx context.Context, params adapter.SendMessageParams) error
	EditMessageFunc  func(ctx context.Context, params adapter.EditMessageParams) error
	SendDocumentFunc func(ctx context.Context, params adapter.DocumentParams) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	return nil
}

func (m *MockTelegramBot) EditMessage(ctx context.Context, params adapter.EditMessageParams) error {
	if m.EditMessageFunc != nil {
		return m.EditMessageFunc(ctx, params)
	}
	return nil
}

func (m *MockTelegramBot) SendDocument(ctx context.Context, params adapter.DocumentParams) error {
	if m.SendDocumentFunc != nil {
		return m.SendDocumentFunc(ctx, params)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs = append(m.Docs, params)
	return nil
}

func (m *MockTelegramBot) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// ---- Mock TextAnalyzer ----

type MockAnalyzer struct {
	EnabledVal bool
	ModelVal   string

	AnalyzeFunc func(ctx context.Context, text string, callerID int64) string

	mu    sync.Mutex
	Calls []string
}

var _ adapter.TextAnalyzer = (*MockAnalyzer)(nil)

func (m *MockAnalyzer) Analyze(ctx context.Context, text string, callerID int64) string {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, text, callerID)
	}
	return "analysis of: " + text
}

func (m *MockAnalyzer) Enabled() bool { return m.EnabledVal }
func (m *MockAnalyzer) Model() string { return m.ModelVal }

// ---- Mock Transcriber ----

type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, filename string, data []byte) (string, error)
}

var _ adapter.Transcriber = (*MockTranscriber)(nil)

func (m *MockTranscriber) Transcribe(ctx context.Context, filename string, data []byte) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, filename, data)
	}
	return "transcript", nil
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	byTG  map[int64]*model.User
	order []int64 // insertion order, oldest first

	UpsertFunc         func(ctx context.Context, tx repository.Tx, u *model.User) (*model.User, error)
	ListFunc           func(ctx context.Context, tx repository.Tx, limit int) ([]*model.User, error)
	IncrementUsageFunc func(ctx context.Context, tx repository.Tx, tgID int64) error
	SetPremiumFunc     func(ctx context.Context, tx repository.Tx, tgID int64, premium bool) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byTG: map[int64]*model.User{}}
}

func (r *MockUserRepo) Upsert(ctx context.Context, tx repository.Tx, u *model.User) (*model.User, error) {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byTG[u.TelegramID]; ok {
		existing.Username = u.Username
		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		existing.UpdatedAt = time.Now()
		cp := *existing
		return &cp, nil
	}
	cp := *u
	now := time.Now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.byTG[u.TelegramID] = &cp
	r.order = append(r.order, u.TelegramID)
	out := cp
	return &out, nil
}

func (r *MockUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byTG[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, limit int) ([]*model.User, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, tx, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for i := len(r.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *r.byTG[r.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockUserRepo) IncrementUsage(ctx context.Context, tx repository.Tx, tgID int64) error {
	if r.IncrementUsageFunc != nil {
		return r.IncrementUsageFunc(ctx, tx, tgID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byTG[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.UsageCount++
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MockUserRepo) SetPremium(ctx context.Context, tx repository.Tx, tgID int64, premium bool) error {
	if r.SetPremiumFunc != nil {
		return r.SetPremiumFunc(ctx, tx, tgID, premium)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byTG[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsPremium = premium
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTG), nil
}

func (r *MockUserRepo) CountPremiumUsers(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.byTG {
		if u.IsPremium {
			n++
		}
	}
	return n, nil
}

// ---- Mock UsageRepository ----

type MockUsageRepo struct {
	mu     sync.Mutex
	Events []model.UsageEvent

	AppendFunc func(ctx context.Context, tx repository.Tx, ev *model.UsageEvent) error
}

var _ repository.UsageRepository = (*MockUsageRepo)(nil)

func NewMockUsageRepo() *MockUsageRepo {
	return &MockUsageRepo{}
}

func (r *MockUsageRepo) Append(ctx context.Context, tx repository.Tx, ev *model.UsageEvent) error {
	if r.AppendFunc != nil {
		return r.AppendFunc(ctx, tx, ev)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, *ev)
	return nil
}

func (r *MockUsageRepo) CountTotal(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Events), nil
}

func (r *MockUsageRepo) CountSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.Events {
		if !ev.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MockUsageRepo) CountThisMonth(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	n := 0
	for _, ev := range r.Events {
		if ev.Timestamp.Month() == now.Month() && ev.Timestamp.Year() == now.Year() {
			n++
		}
	}
	return n, nil
}

func (r *MockUsageRepo) CountActiveUsersSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	distinct := map[int64]struct{}{}
	for _, ev := range r.Events {
		if !ev.Timestamp.Before(since) {
			distinct[ev.TelegramID] = struct{}{}
		}
	}
	return len(distinct), nil
}

// ---- Mock AdminStateRepository ----

type MockStateRepo struct {
	mu     sync.Mutex
	states map[int64]repository.AdminState

	GetFunc func(ctx context.Context, chatID int64) (*repository.AdminState, error)
	SetFunc func(ctx context.Context, chatID int64, state *repository.AdminState) error
}

var _ repository.AdminStateRepository = (*MockStateRepo)(nil)

func NewMockStateRepo() *MockStateRepo {
	return &MockStateRepo{states: map[int64]repository.AdminState{}}
}

func (r *MockStateRepo) Get(ctx context.Context, chatID int64) (*repository.AdminState, error) {
	if r.GetFunc != nil {
		return r.GetFunc(ctx, chatID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[chatID]
	if !ok {
		return nil, nil
	}
	cp := st
	return &cp, nil
}

func (r *MockStateRepo) Set(ctx context.Context, chatID int64, state *repository.AdminState) error {
	if r.SetFunc != nil {
		return r.SetFunc(ctx, chatID, state)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[chatID] = *state
	return nil
}

func (r *MockStateRepo) Clear(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, chatID)
	return nil
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction. Assign
// WithTxFunc for tests that need to verify transactional behavior.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
