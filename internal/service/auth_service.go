package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fruitygit/internal/auth"
	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/model"
	"fruitygit/internal/repository"
)

const bcryptCost = 10

// TokenPair is what every successful authentication hands back.
type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         *model.User `json:"user"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*TokenPair, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
	Validate(ctx context.Context, token, email string) (*auth.Claims, error)
}

type authService struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	jwtService  *auth.JWTService
	tokenStore  auth.TokenStoreInterface
	refreshTTL  time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	refreshTTL time.Duration,
	log zerolog.Logger,
) AuthService {
	if refreshTTL <= 0 {
		refreshTTL = auth.DefaultRefreshTokenExpiry
	}
	return &authService{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
		refreshTTL:  refreshTTL,
		log:         log.With().Str("component", "auth").Logger(),
		now:         time.Now,
	}
}

// Register creates a user with a hashed password and signs them in.
func (s *authService) Register(ctx context.Context, email, password, name string) (*TokenPair, error) {
	email = normalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(name),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration won the unique email index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Uint("user_id", user.ID).Msg("user registered")

	return s.issue(ctx, user)
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed: a second use fails.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	oldHash := auth.HashRefreshToken(refreshToken)

	slot, err := s.refreshRepo.FindByHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if slot.Expired(s.now()) {
		_ = s.refreshRepo.DeleteByUserID(ctx, slot.UserID)
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, slot.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	newToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	rotated, err := s.refreshRepo.Rotate(ctx, user.ID, oldHash, auth.HashRefreshToken(newToken), s.now().Add(s.refreshTTL))
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !rotated {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newToken,
		ExpiresIn:    int64(s.jwtService.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// Logout clears the caller's refresh slot and revokes the presented access
// token until it expires. A refresh token belonging to someone else is rejected.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if claims == nil {
		return apperrors.ErrUnauthorized
	}

	if refreshToken != "" {
		slot, err := s.refreshRepo.FindByHash(ctx, auth.HashRefreshToken(refreshToken))
		if err == nil && slot.UserID != claims.UserID {
			return apperrors.ErrInvalidRefreshToken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find refresh token: %w", err)
		}
	}

	if err := s.refreshRepo.DeleteByUserID(ctx, claims.UserID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if claims.ExpiresAt != nil {
		ttl := claims.ExpiresAt.Time.Sub(s.now())
		if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, ttl); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	s.log.Info().Uint("user_id", claims.UserID).Msg("user logged out")
	return nil
}

// Validate checks signature and expiry. When email is set the token must
// belong to that user.
func (s *authService) Validate(ctx context.Context, token, email string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if revoked, _ := s.tokenStore.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
		return nil, apperrors.ErrUnauthorized
	}

	if email == "" {
		return claims, nil
	}
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.ID != claims.UserID {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) issue(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	slot := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.refreshRepo.Upsert(ctx, slot); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
