package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidblanco1407/pma-frequency-backend/internal/dto"
	"github.com/davidblanco1407/pma-frequency-backend/internal/model"
	"github.com/davidblanco1407/pma-frequency-backend/internal/testutil"
)

func TestCorrection_CreateWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	staff := testutil.CreateAccount(t, env.db, "staff", testutil.Staff())

	_, err := env.svc.Correction.Create(context.Background(), actorOf(staff), &dto.CreateCorrectionRequest{Description: "Mi teléfono cambió"})
	require.ErrorIs(t, err, ErrMemberProfileNotFound)
	assert.Zero(t, env.count(t, &model.CorrectionRequest{}))
}

func TestCorrection_CreateAndRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana, m := testutil.CreateMember(t, env.db, "ana", "Ana")
	beto, _ := testutil.CreateMember(t, env.db, "beto", "Beto")
	staff := testutil.CreateAccount(t, env.db, "staff", testutil.Staff())

	created, err := env.svc.Correction.Create(ctx, actorOf(ana), &dto.CreateCorrectionRequest{Description: "Mi <em>fecha</em> de registro está mal"})
	require.NoError(t, err)
	assert.Equal(t, m.ID, created.MemberID)
	assert.Equal(t, "Ana", created.MemberName)
	assert.Equal(t, "Mi fecha de registro está mal", created.Description)
	assert.Equal(t, string(model.CorrectionPending), created.Status)

	_, err = env.svc.Correction.Get(ctx, actorOf(ana), created.ID)
	require.NoError(t, err)
	_, err = env.svc.Correction.Get(ctx, actorOf(staff), created.ID)
	require.NoError(t, err)
	_, err = env.svc.Correction.Get(ctx, actorOf(beto), created.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = env.svc.Correction.Get(ctx, actorOf(staff), 999)
	require.ErrorIs(t, err, ErrCorrectionNotFound)
}

func TestCorrection_ListVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana, _ := testutil.CreateMember(t, env.db, "ana", "Ana")
	beto, _ := testutil.CreateMember(t, env.db, "beto", "Beto")
	staff := testutil.CreateAccount(t, env.db, "staff", testutil.Staff())

	for _, a := range []*model.Account{ana, ana, beto} {
		_, err := env.svc.Correction.Create(ctx, actorOf(a), &dto.CreateCorrectionRequest{Description: "revisar"})
		require.NoError(t, err)
	}

	_, total, err := env.svc.Correction.List(ctx, actorOf(ana), &dto.CorrectionListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = env.svc.Correction.List(ctx, actorOf(ana), &dto.CorrectionListRequest{MemberID: 9999})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "members cannot widen their scope")

	_, total, err = env.svc.Correction.List(ctx, actorOf(staff), &dto.CorrectionListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	list, total, err := env.svc.Correction.List(ctx, actorOf(testutil.CreateAccount(t, env.db, "sinperfil")), &dto.CorrectionListRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestCorrection_Resolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana, _ := testutil.CreateMember(t, env.db, "ana", "Ana")
	staff := testutil.CreateAccount(t, env.db, "staff", testutil.Staff())
	actor := actorOf(staff)

	created, err := env.svc.Correction.Create(ctx, actorOf(ana), &dto.CreateCorrectionRequest{Description: "revisar"})
	require.NoError(t, err)

	_, err = env.svc.Correction.Update(ctx, actorOf(ana), created.ID, &dto.UpdateCorrectionRequest{Status: strPtr("approved")})
	require.ErrorIs(t, err, ErrForbidden)

	resolved, err := env.svc.Correction.Update(ctx, actor, created.ID, &dto.UpdateCorrectionRequest{
		Status: strPtr("approved"), Response: strPtr("Corregido"),
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, staff.ID, *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(fixedNow))

	_, err = env.svc.Correction.Update(ctx, actor, created.ID, &dto.UpdateCorrectionRequest{Status: strPtr("rejected")})
	require.ErrorIs(t, err, ErrCorrectionResolved)
	_, err = env.svc.Correction.Update(ctx, actor, created.ID, &dto.UpdateCorrectionRequest{Status: strPtr("pending")})
	require.ErrorIs(t, err, ErrCorrectionResolved)

	edited, err := env.svc.Correction.Update(ctx, actor, created.ID, &dto.UpdateCorrectionRequest{Response: strPtr("Corregido el 14/03")})
	require.NoError(t, err)
	assert.Equal(t, "approved", edited.Status)
	require.NotNil(t, edited.Response)
	assert.Equal(t, "Corregido el 14/03", *edited.Response)

	_, err = env.svc.Correction.Update(ctx, actor, 999, &dto.UpdateCorrectionRequest{Status: strPtr("approved")})
	require.ErrorIs(t, err, ErrCorrectionNotFound)
}
