package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/estatedesk/estate-service/internal/auth"
	"github.com/estatedesk/estate-service/internal/config"
	"github.com/estatedesk/estate-service/internal/domain"
	"github.com/estatedesk/estate-service/internal/events"
	"github.com/estatedesk/estate-service/internal/repository"
	apperrors "github.com/estatedesk/estate-service/pkg/util"
)

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	users      repository.UserRepository
	landlords  repository.LandlordRepository
	tenants    repository.TenantRepository
	resets     repository.PasswordResetRepository
	audit      repository.AuditLogRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	LandlordRepo      repository.LandlordRepository
	TenantRepo        repository.TenantRepository
	PasswordResetRepo repository.PasswordResetRepository
	AuditRepo         repository.AuditLogRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		landlords:  deps.LandlordRepo,
		tenants:    deps.TenantRepo,
		resets:     deps.PasswordResetRepo,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// RegistrationInput carries sign-up fields shared by landlord and tenant roles.
type RegistrationInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// RegisterLandlord creates a landlord account with its role profile.
func (s *AuthService) RegisterLandlord(ctx context.Context, input RegistrationInput) (*domain.User, string, time.Time, error) {
	user, err := s.createUser(ctx, input, domain.UserRoleLandlord)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	landlord := &domain.Landlord{
		UserID:    user.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}
	if err := s.landlords.Create(ctx, landlord); err != nil {
		s.compensateUser(ctx, user.ID)
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	return s.finishRegistration(ctx, user)
}

// RegisterTenant creates a tenant account with its role profile.
func (s *AuthService) RegisterTenant(ctx context.Context, input RegistrationInput) (*domain.User, string, time.Time, error) {
	user, err := s.createUser(ctx, input, domain.UserRoleTenant)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	tenant := &domain.Tenant{
		UserID:    user.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		s.compensateUser(ctx, user.ID)
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	return s.finishRegistration(ctx, user)
}

func (s *AuthService) createUser(ctx context.Context, input RegistrationInput, role domain.UserRole) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// compensateUser deletes the identity row after a failed profile insert.
func (s *AuthService) compensateUser(ctx context.Context, userID string) {
	if err := s.users.Delete(ctx, userID); err != nil {
		s.logger.Error("compensating user delete failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *AuthService) finishRegistration(ctx context.Context, user *domain.User) (*domain.User, string, time.Time, error) {
	s.appendAudit(ctx, &user.ID, domain.AuditAccountCreated, domain.AuditEntityUser, user.ID, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates a user of any role.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// IssueToken mints a session token for an already verified user.
func (s *AuthService) IssueToken(user *domain.User) (string, time.Time, error) {
	return s.tokenMgr.GenerateToken(user.ID, user.Role)
}

// RequestPasswordReset issues a reset secret for the account, if one exists.
// The secret is only stored as a one-way hash; delivery happens via the
// notification path and failure never surfaces to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Do not leak which emails exist.
			return nil
		}
		return apperrors.MapError(err)
	}

	secret := uuid.NewString()
	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(secret),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return apperrors.MapError(err)
	}

	s.appendAudit(ctx, &user.ID, domain.AuditPasswordResetRequested, domain.AuditEntityUser, user.ID, nil)

	if s.dispatcher != nil {
		event := events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventPasswordReset,
			ActorUserID: &user.ID,
			Timestamp:   time.Now(),
			Payload: events.PasswordResetPayload{
				Email:      user.Email,
				ResetToken: secret,
			},
		}
		_ = s.dispatcher.Publish(ctx, event)
	}
	return nil
}

// ConfirmPasswordReset validates the reset secret and updates the password.
// Each secret is consumed exactly once.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, secret, newPassword string) error {
	token, err := s.resets.GetByTokenHash(ctx, auth.HashToken(secret))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid or expired token", nil)
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("invalid or expired token", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	return s.resets.MarkUsed(ctx, token.ID)
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) appendAudit(ctx context.Context, actorUserID *string, action domain.AuditAction, entityType domain.AuditEntityType, entityID string, details map[string]any) {
	entry := &domain.AuditEntry{
		ActorUserID: actorUserID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Details:     details,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("action", string(action)),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
