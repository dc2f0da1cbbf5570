package testutil

import (
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/password"
)

// DefaultPassword is the password every fixture account is created with.
const DefaultPassword = "Frecuencia2026"

// AccountOpt customises a fixture account.
type AccountOpt func(*model.Account)

// Staff marks the account as staff.
func Staff() AccountOpt { return func(a *model.Account) { a.IsStaff = true } }

// Superuser marks the account as superuser (and staff).
func Superuser() AccountOpt {
	return func(a *model.Account) { a.IsStaff, a.IsSuperuser = true, true }
}

// CreateAccount inserts an account with DefaultPassword.
func CreateAccount(t testing.TB, db *gorm.DB, username string, opts ...AccountOpt) *model.Account {
	t.Helper()

	hash, err := password.Hash(DefaultPassword, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a := &model.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create account %s: %v", username, err)
	}
	return a
}

// MemberOpt customises a fixture member.
type MemberOpt func(*model.Member)

// Inactive deactivates the fixture member with the given return policy.
func Inactive(policy model.ReturnPolicy) MemberOpt {
	return func(m *model.Member) {
		at := time.Now().UTC().Add(-time.Hour)
		m.Active = false
		m.ReturnPolicy = policy
		m.DeactivatedAt = &at
	}
}

// CreateMember inserts an account and the member owning it.
func CreateMember(t testing.TB, db *gorm.DB, username, fullName string, opts ...MemberOpt) (*model.Account, *model.Member) {
	t.Helper()

	account := CreateAccount(t, db, username)
	m := &model.Member{
		AccountID:    account.ID,
		FullName:     fullName,
		Email:        account.Email,
		Phone:        "+573001234567",
		Active:       true,
		ReturnPolicy: model.ReturnPolicyUnset,
	}
	for _, opt := range opts {
		opt(m)
	}

	// gorm skips zero-valued fields that carry a default, so inactive
	// fixtures are written in two steps.
	active := m.Active
	m.Active = true
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create member %s: %v", strings.TrimSpace(fullName), err)
	}
	if !active {
		if err := db.Model(m).Update("active", false).Error; err != nil {
			t.Fatalf("deactivate member: %v", err)
		}
		m.Active = false
	}
	return account, m
}
