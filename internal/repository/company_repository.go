package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

var (
	// ErrCreateCompany is returned when creating the company fails inside the signup transaction.
	ErrCreateCompany = errors.New("company repository: create company failed")
	// ErrCreateManager is returned when creating the manager fails inside the signup transaction.
	ErrCreateManager = errors.New("company repository: create manager failed")
)

// GormCompanyRepository is a GORM implementation of CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByName finds a company by name
func (r *GormCompanyRepository) FindByName(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// CreateWithManager creates a company and its first manager atomically.
func (r *GormCompanyRepository) CreateWithManager(ctx context.Context, company *models.Company, manager *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateCompany, err)
		}

		manager.CompanyID = company.ID
		manager.Role = models.RoleManager

		if err := tx.Create(manager).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateManager, err)
		}

		return nil
	})
}
