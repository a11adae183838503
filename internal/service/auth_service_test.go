package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatedesk/estate-service/internal/config"
	"github.com/estatedesk/estate-service/internal/domain"
	"github.com/estatedesk/estate-service/internal/events"
	"github.com/estatedesk/estate-service/internal/service"
	apperrors "github.com/estatedesk/estate-service/pkg/util"
)

type authFixture struct {
	users      *fakeUserRepo
	landlords  *fakeLandlordRepo
	tenants    *fakeTenantRepo
	resets     *fakePasswordResetRepo
	audit      *fakeAuditRepo
	dispatcher *recordingDispatcher
	svc        *service.AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:      newFakeUserRepo(),
		landlords:  newFakeLandlordRepo(),
		tenants:    newFakeTenantRepo(),
		resets:     newFakePasswordResetRepo(),
		audit:      newFakeAuditRepo(),
		dispatcher: &recordingDispatcher{},
	}
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              4,
		},
	}
	f.svc = service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          f.users,
		LandlordRepo:      f.landlords,
		TenantRepo:        f.tenants,
		PasswordResetRepo: f.resets,
		AuditRepo:         f.audit,
		Dispatcher:        f.dispatcher,
		Logger:            zap.NewNop(),
	})
	return f
}

func registerLandlord(t *testing.T, f *authFixture, email string) *domain.User {
	t.Helper()
	user, token, _, err := f.svc.RegisterLandlord(context.Background(), service.RegistrationInput{
		Email:     email,
		Password:  "initial-pass",
		FirstName: "Pat",
		LastName:  "Owner",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func TestAuthService_Register(t *testing.T) {
	t.Run("Should create a landlord with a role profile and session token", func(t *testing.T) {
		f := newAuthFixture()

		user := registerLandlord(t, f, "owner@example.com")
		assert.Equal(t, domain.UserRoleLandlord, user.Role)

		landlord, err := f.landlords.GetByUserID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pat", landlord.FirstName)
	})

	t.Run("Should reject a duplicate email across roles", func(t *testing.T) {
		f := newAuthFixture()
		registerLandlord(t, f, "owner@example.com")

		_, _, _, err := f.svc.RegisterTenant(context.Background(), service.RegistrationInput{
			Email:    "Owner@Example.com",
			Password: "pass",
		})
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
	})

	t.Run("Should delete the user when the profile insert fails", func(t *testing.T) {
		f := newAuthFixture()
		f.tenants.errCreate = errors.New("insert failed")

		_, _, _, err := f.svc.RegisterTenant(context.Background(), service.RegistrationInput{
			Email:    "tenant@example.com",
			Password: "pass",
		})
		require.Error(t, err)

		_, err = f.users.GetByEmail(context.Background(), "tenant@example.com")
		assert.Error(t, err, "orphaned user row should have been removed")
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("Should authenticate with the registered password", func(t *testing.T) {
		f := newAuthFixture()
		registered := registerLandlord(t, f, "owner@example.com")

		user, token, _, err := f.svc.Login(context.Background(), "owner@example.com", "initial-pass")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		f := newAuthFixture()
		registerLandlord(t, f, "owner@example.com")

		_, _, _, err := f.svc.Login(context.Background(), "owner@example.com", "wrong")
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, 401, domainErr.HTTPStatus)
	})

	t.Run("Should reject an unknown email with the same error", func(t *testing.T) {
		f := newAuthFixture()

		_, _, _, err := f.svc.Login(context.Background(), "nobody@example.com", "pass")
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, 401, domainErr.HTTPStatus)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	resetSecret := func(t *testing.T, f *authFixture) string {
		t.Helper()
		published := f.dispatcher.byType(events.EventPasswordReset)
		require.Len(t, published, 1)
		payload, ok := published[0].Payload.(events.PasswordResetPayload)
		require.True(t, ok)
		return payload.ResetToken
	}

	t.Run("Should reset the password with a valid secret", func(t *testing.T) {
		f := newAuthFixture()
		registerLandlord(t, f, "owner@example.com")

		require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "owner@example.com"))
		secret := resetSecret(t, f)

		require.NoError(t, f.svc.ConfirmPasswordReset(context.Background(), secret, "new-pass"))

		_, _, _, err := f.svc.Login(context.Background(), "owner@example.com", "new-pass")
		assert.NoError(t, err)
		_, _, _, err = f.svc.Login(context.Background(), "owner@example.com", "initial-pass")
		assert.Error(t, err)
	})

	t.Run("Should consume the secret exactly once", func(t *testing.T) {
		f := newAuthFixture()
		registerLandlord(t, f, "owner@example.com")

		require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "owner@example.com"))
		secret := resetSecret(t, f)

		require.NoError(t, f.svc.ConfirmPasswordReset(context.Background(), secret, "new-pass"))
		err := f.svc.ConfirmPasswordReset(context.Background(), secret, "other-pass")
		require.Error(t, err)
	})

	t.Run("Should stay silent for an unknown email", func(t *testing.T) {
		f := newAuthFixture()

		require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
		assert.Empty(t, f.dispatcher.byType(events.EventPasswordReset))
	})

	t.Run("Should reject an unknown secret", func(t *testing.T) {
		f := newAuthFixture()

		err := f.svc.ConfirmPasswordReset(context.Background(), "bogus", "new-pass")
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, 400, domainErr.HTTPStatus)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("Should require the current password", func(t *testing.T) {
		f := newAuthFixture()
		user := registerLandlord(t, f, "owner@example.com")

		err := f.svc.ChangePassword(context.Background(), user.ID, "wrong", "new-pass")
		require.Error(t, err)

		require.NoError(t, f.svc.ChangePassword(context.Background(), user.ID, "initial-pass", "new-pass"))

		_, _, _, err = f.svc.Login(context.Background(), "owner@example.com", "new-pass")
		assert.NoError(t, err)
	})
}
