package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"fruitygit/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.User, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockRefreshTokenRepository is a mock implementation of RefreshTokenRepository.
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Upsert(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Rotate(ctx context.Context, userID uint, oldHash, newHash string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, oldHash, newHash, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// memoryRefreshTokens keeps refresh slots in a map, one per user.
type memoryRefreshTokens struct {
	mu    sync.Mutex
	slots map[uint]model.RefreshToken
}

func newMemoryRefreshTokens() *memoryRefreshTokens {
	return &memoryRefreshTokens{slots: map[uint]model.RefreshToken{}}
}

func (m *memoryRefreshTokens) Upsert(_ context.Context, token *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[token.UserID] = *token
	return nil
}

func (m *memoryRefreshTokens) Rotate(_ context.Context, userID uint, oldHash, newHash string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[userID]
	if !ok || slot.TokenHash != oldHash {
		return false, nil
	}
	slot.TokenHash = newHash
	slot.ExpiresAt = expiresAt
	m.slots[userID] = slot
	return true, nil
}

func (m *memoryRefreshTokens) FindByHash(_ context.Context, hash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, slot := range m.slots {
		if slot.TokenHash == hash {
			found := slot
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRefreshTokens) DeleteByUserID(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, userID)
	return nil
}

// memoryRepoRepository is an in-memory RepoRepository.
type memoryRepoRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]model.Repository
	// createErr, when set, is returned by the next Create.
	createErr error
	// afterFind, when set, runs after FindByName read a row.
	afterFind func()
}

func newMemoryRepoRepository() *memoryRepoRepository {
	return &memoryRepoRepository{rows: map[string]model.Repository{}}
}

func (m *memoryRepoRepository) Create(_ context.Context, repo *model.Repository) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr; err != nil {
		m.createErr = nil
		return err
	}
	if _, ok := m.rows[repo.Name]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.nextID++
	repo.ID = m.nextID
	repo.CreatedAt = time.Now()
	m.rows[repo.Name] = *repo
	return nil
}

func (m *memoryRepoRepository) Update(_ context.Context, repo *model.Repository) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[repo.Name] = *repo
	return nil
}

func (m *memoryRepoRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, row := range m.rows {
		if row.ID == id {
			delete(m.rows, name)
		}
	}
	return nil
}

func (m *memoryRepoRepository) FindByName(_ context.Context, name string) (*model.Repository, error) {
	m.mu.Lock()
	row, ok := m.rows[name]
	hook := m.afterFind
	m.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if hook != nil {
		hook()
	}
	return &row, nil
}

func (m *memoryRepoRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[name]
	return ok, nil
}

func (m *memoryRepoRepository) ListByOwner(_ context.Context, ownerID uint, ownerEmail string) ([]model.Repository, error) {
	return m.filter(func(r model.Repository) bool {
		return r.OwnerID == ownerID || r.OwnerEmail == ownerEmail
	}), nil
}

func (m *memoryRepoRepository) ListPublicByOwnerEmail(_ context.Context, ownerEmail string) ([]model.Repository, error) {
	return m.filter(func(r model.Repository) bool {
		return r.OwnerEmail == ownerEmail && !r.IsPrivate
	}), nil
}

func (m *memoryRepoRepository) filter(keep func(model.Repository) bool) []model.Repository {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Repository{}
	for _, row := range m.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// memoryCache is a map backed metadata cache.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dst interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	return ok && json.Unmarshal(raw, dst) == nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}
