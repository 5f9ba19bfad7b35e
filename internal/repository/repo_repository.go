package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"fruitygit/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func lower(s string) string { return strings.ToLower(s) }

// RepoRepository defines repository metadata persistence operations.
type RepoRepository interface {
	Create(ctx context.Context, repo *model.Repository) error
	Update(ctx context.Context, repo *model.Repository) error
	Delete(ctx context.Context, id uint) error
	FindByName(ctx context.Context, name string) (*model.Repository, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// ListByOwner returns every repository owned by the user, matching either
	// the owner id or, for rows written by older services, the owner email.
	ListByOwner(ctx context.Context, ownerID uint, ownerEmail string) ([]model.Repository, error)
	ListPublicByOwnerEmail(ctx context.Context, ownerEmail string) ([]model.Repository, error)
}

type repoRepository struct {
	db *gorm.DB
}

// NewRepoRepository creates a new repository metadata store.
func NewRepoRepository(db *gorm.DB) RepoRepository {
	return &repoRepository{db: db}
}

func (r *repoRepository) Create(ctx context.Context, repo *model.Repository) error {
	return r.db.WithContext(ctx).Create(repo).Error
}

func (r *repoRepository) Update(ctx context.Context, repo *model.Repository) error {
	return r.db.WithContext(ctx).Save(repo).Error
}

func (r *repoRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Repository{}, id).Error
}

func (r *repoRepository) FindByName(ctx context.Context, name string) (*model.Repository, error) {
	var repo model.Repository
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&repo).Error; err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *repoRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Repository{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repoRepository) ListByOwner(ctx context.Context, ownerID uint, ownerEmail string) ([]model.Repository, error) {
	var repos []model.Repository
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR owner_email = ?", ownerID, ownerEmail).
		Order("created_at DESC").
		Find(&repos).Error
	if err != nil {
		return nil, err
	}
	return repos, nil
}

func (r *repoRepository) ListPublicByOwnerEmail(ctx context.Context, ownerEmail string) ([]model.Repository, error) {
	var repos []model.Repository
	err := r.db.WithContext(ctx).
		Where("owner_email = ? AND is_private = ?", ownerEmail, false).
		Order("created_at DESC").
		Find(&repos).Error
	if err != nil {
		return nil, err
	}
	return repos, nil
}
