package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/password"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/phone"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/sanitize"
)

const (
	maxUsernameLen   = 150
	usernameAttempts = 3
)

// errUsernameRace: the derived login name was claimed by a concurrent
// provisioning between the check and the insert.
var errUsernameRace = errors.New("provision: username taken concurrently")

// Provisioner creates a member together with its login account and sends
// the welcome notification. Nothing is persisted unless the notification
// was accepted.
type Provisioner struct {
	*Deps
}

// NewProvisioner builds a Provisioner.
func NewProvisioner(d *Deps) *Provisioner {
	return &Provisioner{Deps: d}
}

// Provisioned is the outcome of a successful provisioning.
type Provisioned struct {
	Account *model.Account
	Member  *model.Member
}

// Provision validates req and creates the account and member atomically.
func (p *Provisioner) Provision(ctx context.Context, req *dto.CreateMemberRequest) (*Provisioned, error) {
	fullName := sanitize.Text(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkMemberContact(memberContact{FullName: &fullName, Email: &email}); err != nil {
		return nil, err
	}

	tel, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	if err := p.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	plain := req.Password
	if plain != "" {
		if err := p.passwordPolicy().Validate(plain, email, fullName); err != nil {
			return nil, weakPassword("password", err)
		}
	} else {
		if plain, err = password.GenerateTemp(p.Config.Auth.TempPasswordLength); err != nil {
			return nil, err
		}
	}

	hash, err := password.Hash(plain, p.Config.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	var out *Provisioned
	for attempt := 1; ; attempt++ {
		out, err = p.create(ctx, fullName, email, tel, hash, plain)
		if !errors.Is(err, errUsernameRace) || attempt == usernameAttempts {
			break
		}
		p.Logger.Debug("username taken concurrently, retrying", zap.String("email", email), zap.Int("attempt", attempt))
	}
	if err != nil {
		p.Metrics.Provisioned(provisionResult(err))
		return nil, err
	}

	p.Metrics.Provisioned("created")
	p.Logger.Info("member provisioned",
		zap.Uint("member_id", out.Member.ID), zap.String("username", out.Account.Username))
	return out, nil
}

// create runs one provisioning transaction.
func (p *Provisioner) create(ctx context.Context, fullName, email, tel, hash, plain string) (*Provisioned, error) {
	var out Provisioned
	err := p.Repo.Transaction(ctx, func(tx *repository.Repository) error {
		username, err := uniqueUsername(ctx, tx.Account, email)
		if err != nil {
			return err
		}

		first, last := splitName(fullName)
		account := &model.Account{
			Username:           username,
			Email:              email,
			PasswordHash:       hash,
			FirstName:          first,
			LastName:           last,
			IsActive:           true,
			MustChangePassword: true,
		}
		if err := tx.Account.Create(ctx, account); err != nil {
			switch {
			case repository.IsUniqueViolationOn(err, "username"):
				return errUsernameRace
			case repository.IsUniqueViolation(err):
				return ErrEmailTaken
			}
			return err
		}

		member := &model.Member{
			AccountID: account.ID,
			FullName:  fullName,
			Email:     email,
			Phone:     tel,
			Active:    true,
		}
		if err := tx.Member.Create(ctx, member); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}

		if err := p.notifyWelcome(ctx, email, fullName, username, plain); err != nil {
			p.Logger.Warn("welcome notification failed, rolling back",
				zap.String("email", email), zap.Error(err))
			return ErrWelcomeNotSent
		}

		out = Provisioned{Account: account, Member: member}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// notifyWelcome runs inside the provisioning transaction, so it is bounded
// by the mail timeout.
func (p *Provisioner) notifyWelcome(ctx context.Context, email, fullName, username, plain string) error {
	if d := p.Config.Mail.Timeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return p.Notifier.NotifyWelcome(ctx, email, fullName, username, plain)
}

func (p *Provisioner) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := p.Repo.Member.EmailExists(ctx, email, 0)
	if err != nil {
		return err
	}
	if !taken {
		if taken, err = p.Repo.Account.EmailExists(ctx, email, 0); err != nil {
			return err
		}
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func provisionResult(err error) string {
	switch {
	case errors.Is(err, ErrWelcomeNotSent):
		return "notify_failed"
	case errors.Is(err, ErrEmailTaken):
		return "conflict"
	default:
		return "error"
	}
}

// uniqueUsername derives a login name from the email local part, appending
// 1, 2, ... until it is free.
func uniqueUsername(ctx context.Context, accounts repository.AccountRepository, email string) (string, error) {
	base := usernameBase(email)
	candidate := base
	for n := 1; ; n++ {
		exists, err := accounts.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		suffix := strconv.Itoa(n)
		stem := base
		if len(stem)+len(suffix) > maxUsernameLen {
			stem = stem[:maxUsernameLen-len(suffix)]
		}
		candidate = stem + suffix
	}
}

// usernameBase keeps the characters allowed in login names: letters, digits
// and . _ + -.
func usernameBase(email string) string {
	local := email
	if i := strings.LastIndex(email, "@"); i >= 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("._+-", r)) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "member"
	}
	if len(base) > maxUsernameLen {
		base = base[:maxUsernameLen]
	}
	return base
}

func splitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
