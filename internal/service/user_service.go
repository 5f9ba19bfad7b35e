package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fruitygit/internal/cache"
	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/model"
	"fruitygit/internal/repository"
)

const (
	userCacheTTL   = 5 * time.Minute
	minQueryLength = 3
	maxSearchHits  = 10
)

// UserService exposes user lookups.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	Search(ctx context.Context, query string) ([]model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// Search returns at most ten users whose name or email contains query.
func (s *userService) Search(ctx context.Context, query string) ([]model.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return nil, apperrors.ErrInvalidQuery
	}
	users, err := s.repo.Search(ctx, query, maxSearchHits)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
