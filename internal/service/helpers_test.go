package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/internal/authz"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/internal/testutil"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/metrics"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type sentMail struct {
	kind     string
	to       string
	username string
	secret   string
}

// fakeNotifier records notifications. Setting fail makes every send fail.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (n *fakeNotifier) NotifyWelcome(_ context.Context, to, _, username, tempPassword string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentMail{kind: "welcome", to: to, username: username, secret: tempPassword})
	return nil
}

func (n *fakeNotifier) NotifyPasswordReset(_ context.Context, to, _, token string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentMail{kind: "reset", to: to, secret: token})
	return nil
}

func (n *fakeNotifier) last() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentMail{}
	}
	return n.sent[len(n.sent)-1]
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// memBlacklist is an in-process TokenBlacklist.
type memBlacklist struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func (b *memBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.jtis == nil {
		b.jtis = make(map[string]time.Duration)
	}
	b.jtis[jti] = ttl
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.jtis[jti]
	return ok, nil
}

var errSMTPDown = errors.New("smtp: connection refused")

type testEnv struct {
	db        *gorm.DB
	repo      *repository.Repository
	notifier  *fakeNotifier
	blacklist *memBlacklist
	deps      *Deps
	svc       *Service
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "service-test-secret-0123456789",
			AccessTokenTTL:     15 * time.Minute,
			RefreshTokenTTL:    24 * time.Hour,
			PasswordResetTTL:   time.Hour,
			TempPasswordLength: 10,
			BcryptCost:         4,
		},
		Security: config.SecurityConfig{PasswordMinLength: 8},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testConfig()
	env := &testEnv{
		db:        db,
		repo:      repository.NewRepository(db),
		notifier:  &fakeNotifier{},
		blacklist: &memBlacklist{},
	}
	deps := &Deps{
		Config:    cfg,
		Repo:      env.repo,
		JWT:       jwt.NewManager(&cfg.Auth),
		Blacklist: env.blacklist,
		Notifier:  env.notifier,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return fixedNow },
	}
	env.svc = NewService(deps)
	env.deps = deps
	return env
}

func actorOf(a *model.Account) authz.Actor {
	return authz.Actor{AccountID: a.ID, Staff: a.IsStaff, Superuser: a.IsSuperuser}
}

func (e *testEnv) reload(t *testing.T, id uint) *model.Member {
	t.Helper()
	m, err := e.repo.Member.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload member %d: %v", id, err)
	}
	return m
}

func (e *testEnv) count(t *testing.T, table interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(table).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
