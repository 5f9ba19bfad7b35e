package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fruitygit/internal/model"
)

// RefreshTokenRepository stores the per-user refresh slot.
type RefreshTokenRepository interface {
	// Upsert replaces the user's slot, invalidating any earlier token.
	Upsert(ctx context.Context, token *model.RefreshToken) error
	// Rotate swaps oldHash for newHash only if oldHash is still the user's
	// current token. It reports false when another call rotated first.
	Rotate(ctx context.Context, userID uint, oldHash, newHash string, expiresAt time.Time) (bool, error)
	FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository.
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Upsert(ctx context.Context, token *model.RefreshToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "updated_at"}),
	}).Create(token).Error
}

func (r *refreshTokenRepository) Rotate(ctx context.Context, userID uint, oldHash, newHash string, expiresAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("user_id = ? AND token_hash = ?", userID, oldHash).
		Updates(map[string]interface{}{"token_hash": newHash, "expires_at": expiresAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *refreshTokenRepository) FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
}
