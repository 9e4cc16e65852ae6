package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInCompany finds an active user inside a company, optionally restricted to a role
func (r *GormUserRepository) FindInCompany(ctx context.Context, id, companyID uint64, role *models.Role) (*models.User, error) {
	query := r.db.WithContext(ctx).
		Scopes(database.ForCompany(companyID)).
		Where("id = ? AND is_active = ?", id, true)
	if role != nil {
		query = query.Where("role = ?", *role)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListReportees lists the active reportees a manager supervises
func (r *GormUserRepository) ListReportees(ctx context.Context, companyID, managerID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(database.ForCompany(companyID)).
		Where("role = ? AND manager_id = ? AND is_active = ?", models.RoleReportee, managerID, true).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
