package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/pkg/helpers"
)

func newTestUserService() (*UserService, *memUserRepo) {
	repo := newMemUserRepo()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewUserService(repo, jwt, nil, nil), repo
}

func TestRegisterFinder(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := testCtx(t)

	u, err := svc.RegisterFinder(ctx, "ana@udea.edu.co", "Ana Pérez", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleFinder, u.Role)
	assert.False(t, u.IsSeeker())
	assert.NotEqual(t, "secreto123", u.Password, "password must be stored hashed")

	_, err = svc.RegisterFinder(ctx, "ana@udea.edu.co", "Otra Ana", "otrosecreto")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterSeeker(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := testCtx(t)

	u, err := svc.RegisterSeeker(ctx, "luis@udea.edu.co", "Luis Mora", "secreto123", "+573001234567", "1035876543")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeeker, u.Role)
	assert.True(t, u.IsSeeker())
	assert.Equal(t, "+573001234567", u.PhoneNumber)

	_, err = svc.RegisterSeeker(ctx, "mal@udea.edu.co", "Sin Datos", "secreto123", "", "1035876543")
	assert.ErrorIs(t, err, ErrIncompleteSeeker)
}

func TestCompleteRegistrationPromotesFinder(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := testCtx(t)

	u, err := svc.RegisterFinder(ctx, "ana@udea.edu.co", "Ana Pérez", "secreto123")
	require.NoError(t, err)

	promoted, err := svc.CompleteRegistration(ctx, u.ID, "+573009876543", "1036123456")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeeker, promoted.Role)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "+573009876543", stored.PhoneNumber)
	assert.Equal(t, "1036123456", stored.IDNumber)

	_, err = svc.CompleteRegistration(ctx, u.ID, "", "")
	assert.ErrorIs(t, err, ErrIncompleteSeeker)

	_, err = svc.CompleteRegistration(ctx, "missing", "+573000000000", "1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := testCtx(t)

	_, err := svc.RegisterFinder(ctx, "ana@udea.edu.co", "Ana Pérez", "secreto123")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "ana@udea.edu.co", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, "ana@udea.edu.co", u.Email)

	_, err = svc.Authenticate(ctx, "ana@udea.edu.co", "equivocada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nadie@udea.edu.co", "secreto123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := testCtx(t)

	reg, err := svc.RegisterSeeker(ctx, "luis@udea.edu.co", "Luis Mora", "secreto123", "+573001234567", "1035876543")
	require.NoError(t, err)

	resp, pair, err := svc.Login(ctx, "luis@udea.edu.co", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, resp.UserID)
	assert.Equal(t, string(entity.RoleSeeker), resp.Role)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, claims.UserID)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := testCtx(t)

	u, err := svc.RegisterFinder(ctx, "ana@udea.edu.co", "Ana Pérez", "secreto123")
	require.NoError(t, err)
	pair, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)

	rotated, userID, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.NotEmpty(t, rotated.AccessToken)

	old, err := svc.JWT.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	fresh, err := svc.JWT.ParseRefreshToken(rotated.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, old.SessionID, fresh.SessionID)

	_, _, err = svc.Refresh(ctx, "garbage-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := testCtx(t)

	finder, err := svc.RegisterFinder(ctx, "ana@udea.edu.co", "Ana Pérez", "secreto123")
	require.NoError(t, err)

	// Phone changes are ignored until the user is a seeker.
	updated, err := svc.UpdateProfile(ctx, finder.ID, UpdateProfileInput{FullName: "Ana M. Pérez", PhoneNumber: "+573001112233"})
	require.NoError(t, err)
	assert.Equal(t, "Ana M. Pérez", updated.FullName)
	assert.Empty(t, updated.PhoneNumber)

	_, err = svc.CompleteRegistration(ctx, finder.ID, "+573001112233", "1036123456")
	require.NoError(t, err)

	updated, err = svc.UpdateProfile(ctx, finder.ID, UpdateProfileInput{PhoneNumber: "+573004445566"})
	require.NoError(t, err)
	assert.Equal(t, "+573004445566", updated.PhoneNumber)
	assert.Equal(t, "Ana M. Pérez", updated.FullName)
}
