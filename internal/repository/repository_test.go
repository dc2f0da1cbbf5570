package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/internal/testutil"
)

func TestTransaction_Rollback(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		account := &model.Account{Username: "rollback", Email: "rollback@example.com", PasswordHash: "x", IsActive: true}
		require.NoError(t, txRepo.Account.Create(ctx, account))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	exists, err := repo.Account.UsernameExists(ctx, "rollback")
	require.NoError(t, err)
	assert.False(t, exists, "rolled back account must not exist")
}

func TestTransaction_Commit(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	txRepo := repo.WithTx(tx)

	account := &model.Account{Username: "commit", Email: "commit@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, txRepo.Account.Create(ctx, account))
	require.NoError(t, tx.Commit().Error)

	got, err := repo.Account.GetByUsername(ctx, "commit")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestAccount_UniqueUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	testutil.CreateAccount(t, db, "ana")
	err := repo.Account.Create(ctx, &model.Account{Username: "ana", Email: "other@example.com", PasswordHash: "x"})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err), "expected unique violation, got %v", err)
	assert.True(t, repository.IsUniqueViolationOn(err, "username"), err.Error())
	assert.False(t, repository.IsUniqueViolationOn(err, "email"), err.Error())

	err = repo.Account.Create(ctx, &model.Account{Username: "ana2", Email: "ana@example.com", PasswordHash: "x"})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolationOn(err, "email"), err.Error())
	assert.False(t, repository.IsUniqueViolationOn(err, "username"), err.Error())
}

func TestAccount_EmailLookupIsCaseInsensitive(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	a := testutil.CreateAccount(t, db, "laura")

	got, err := repo.Account.GetByEmail(ctx, "LAURA@Example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	exists, err := repo.Account.EmailExists(ctx, "laura@example.com", a.ID)
	require.NoError(t, err)
	assert.False(t, exists, "own email must be excluded")
}

func TestAccount_UpdateMissingRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)

	err := repo.Account.UpdatePrivileges(context.Background(), 999, true)
	assert.True(t, repository.IsNotFound(err))
}

func TestMember_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	_, ana := testutil.CreateMember(t, db, "ana", "Ana Pérez")
	testutil.CreateMember(t, db, "bruno", "Bruno Díaz", testutil.Inactive(model.ReturnPolicyMayReturn))
	testutil.CreateMember(t, db, "carla", "Carla Ruiz", testutil.Inactive(model.ReturnPolicyBlocked))

	all, total, err := repo.Member.List(ctx, repository.MemberFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "Ana Pérez", all[0].FullName, "ordered by full name")

	active := true
	list, total, err := repo.Member.List(ctx, repository.MemberFilter{Active: &active}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, ana.ID, list[0].ID)

	mayReturn := false
	list, _, err = repo.Member.List(ctx, repository.MemberFilter{MayReturn: &mayReturn}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Carla Ruiz", list[0].FullName)

	list, _, err = repo.Member.List(ctx, repository.MemberFilter{Name: "díaz"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bruno Díaz", list[0].FullName)

	list, _, err = repo.Member.List(ctx, repository.MemberFilter{Email: "carla@"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, _, err = repo.Member.List(ctx, repository.MemberFilter{AccountID: &ana.AccountID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ana.ID, list[0].ID)
}

func TestMember_ListEscapesWildcards(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)

	testutil.CreateMember(t, db, "ana", "Ana Pérez")

	list, _, err := repo.Member.List(context.Background(), repository.MemberFilter{Name: "%"}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list, "a literal %% must not match everything")
}

func TestMember_ListPagination(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)

	for _, u := range []string{"a1", "a2", "a3", "a4", "a5"} {
		testutil.CreateMember(t, db, u, "Member "+u)
	}

	page, total, err := repo.Member.List(context.Background(), repository.MemberFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Member a3", page[0].FullName)
}

func TestMember_UpdateStatusWritesAllColumns(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	staff := testutil.CreateAccount(t, db, "staff", testutil.Staff())
	_, m := testutil.CreateMember(t, db, "ana", "Ana Pérez")

	at := time.Now().UTC()
	require.NoError(t, repo.Member.UpdateStatus(ctx, m.ID, repository.MemberStatusFields{
		Active:        false,
		ReturnPolicy:  model.ReturnPolicyBlocked,
		DeactivatedAt: &at,
		DeactivatedBy: &staff.ID,
	}))

	got, err := repo.Member.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, model.ReturnPolicyBlocked, got.ReturnPolicy)
	require.NotNil(t, got.DeactivatedAt)
	require.NotNil(t, got.DeactivatedBy)
	assert.Equal(t, staff.ID, *got.DeactivatedBy)

	require.NoError(t, repo.Member.UpdateStatus(ctx, m.ID, repository.MemberStatusFields{
		Active:       true,
		ReturnPolicy: model.ReturnPolicyBlocked,
	}))
	got, err = repo.Member.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Nil(t, got.DeactivatedAt)
	assert.Nil(t, got.DeactivatedBy)
}

func TestMember_UpdateContactIgnoresOtherColumns(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	_, m := testutil.CreateMember(t, db, "ana", "Ana Pérez")

	require.NoError(t, repo.Member.UpdateContact(ctx, m.ID, map[string]interface{}{
		"full_name": "Ana María Pérez",
		"active":    false,
	}))

	got, err := repo.Member.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María Pérez", got.FullName)
	assert.True(t, got.Active)
}

func TestMember_ForUpdateInsideTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	_, m := testutil.CreateMember(t, db, "ana", "Ana Pérez")

	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		got, err := txRepo.Member.GetByIDForUpdate(ctx, m.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, m.ID, got.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestMember_Stats(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)

	stats, err := repo.Member.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.MemberStats{}, *stats, "empty table")

	testutil.CreateMember(t, db, "a", "A")
	testutil.CreateMember(t, db, "b", "B")
	testutil.CreateMember(t, db, "c", "C", testutil.Inactive(model.ReturnPolicyMayReturn))
	testutil.CreateMember(t, db, "d", "D", testutil.Inactive(model.ReturnPolicyBlocked))

	stats, err = repo.Member.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.MemberStats{Total: 4, Active: 2, InactiveReturnable: 1, InactiveBlocked: 1}, *stats)
}

func TestSanction_CascadeAndOrder(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	_, m := testutil.CreateMember(t, db, "ana", "Ana Pérez")
	older := &model.Sanction{MemberID: m.ID, Reason: "late", ImposedAt: time.Now().UTC().Add(-48 * time.Hour)}
	newer := &model.Sanction{MemberID: m.ID, Reason: "absent", ImposedAt: time.Now().UTC()}
	require.NoError(t, repo.Sanction.Create(ctx, older))
	require.NoError(t, repo.Sanction.Create(ctx, newer))

	list, total, err := repo.Sanction.List(ctx, repository.SanctionFilter{MemberID: &m.ID}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest first")
	require.NotNil(t, list[0].Member)
	assert.Equal(t, "Ana Pérez", list[0].Member.FullName)

	require.NoError(t, db.Delete(&model.Member{}, m.ID).Error)
	_, total, err = repo.Sanction.List(ctx, repository.SanctionFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "sanctions follow their member")
}

func TestSanction_UpdateKeepsImposedFields(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	staff := testutil.CreateAccount(t, db, "staff", testutil.Staff())
	_, m := testutil.CreateMember(t, db, "ana", "Ana Pérez")
	s := &model.Sanction{MemberID: m.ID, Reason: "late", ImposedBy: &staff.ID}
	require.NoError(t, repo.Sanction.Create(ctx, s))

	days := 7
	require.NoError(t, repo.Sanction.Update(ctx, &model.Sanction{ID: s.ID, Reason: "very late", DurationDays: &days}))

	got, err := repo.Sanction.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "very late", got.Reason)
	require.NotNil(t, got.DurationDays)
	assert.Equal(t, 7, *got.DurationDays)
	require.NotNil(t, got.ImposedBy)
	assert.Equal(t, staff.ID, *got.ImposedBy)
}

func TestCorrection_ListByMemberAndStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	_, ana := testutil.CreateMember(t, db, "ana", "Ana Pérez")
	_, bruno := testutil.CreateMember(t, db, "bruno", "Bruno Díaz")

	require.NoError(t, repo.Correction.Create(ctx, &model.CorrectionRequest{MemberID: ana.ID, Description: "wrong phone", Status: model.CorrectionPending}))
	require.NoError(t, repo.Correction.Create(ctx, &model.CorrectionRequest{MemberID: ana.ID, Description: "wrong name", Status: model.CorrectionRejected}))
	require.NoError(t, repo.Correction.Create(ctx, &model.CorrectionRequest{MemberID: bruno.ID, Description: "sanction", Status: model.CorrectionPending}))

	_, total, err := repo.Correction.List(ctx, repository.CorrectionFilter{MemberID: &ana.ID}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	list, total, err := repo.Correction.List(ctx, repository.CorrectionFilter{Status: model.CorrectionPending}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range list {
		assert.Equal(t, model.CorrectionPending, r.Status)
		require.NotNil(t, r.Member)
	}
}

func TestPasswordReset_Lifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	a := testutil.CreateAccount(t, db, "ana")
	now := time.Now().UTC()

	first := &model.PasswordReset{AccountID: a.ID, TokenHash: "hash-1", ExpiresAt: now.Add(time.Hour)}
	second := &model.PasswordReset{AccountID: a.ID, TokenHash: "hash-2", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.PasswordReset.Create(ctx, first))
	require.NoError(t, repo.PasswordReset.InvalidateForAccount(ctx, a.ID, now))
	require.NoError(t, repo.PasswordReset.Create(ctx, second))

	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		got, err := txRepo.PasswordReset.GetByTokenHashForUpdate(ctx, "hash-1")
		require.NoError(t, err)
		assert.False(t, got.Usable(now), "invalidated token")

		got, err = txRepo.PasswordReset.GetByTokenHashForUpdate(ctx, "hash-2")
		require.NoError(t, err)
		assert.True(t, got.Usable(now))
		return txRepo.PasswordReset.MarkUsed(ctx, got.ID, now)
	})
	require.NoError(t, err)

	err = repo.PasswordReset.MarkUsed(ctx, second.ID, now)
	assert.True(t, repository.IsNotFound(err), "a token can only be used once")

	_, err = repo.PasswordReset.GetByTokenHashForUpdate(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))
}
