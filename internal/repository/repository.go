package repository

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// TaskRepository defines the interface for task data access.
// Every lookup takes the caller's company ID; there is no unscoped variant.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a live (not soft-deleted) task inside a company
	FindByID(ctx context.Context, id, companyID uint64) (*models.Task, error)

	// List retrieves live tasks matching the filter
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// UpdateFields writes the given columns of a live task and returns the fresh row
	UpdateFields(ctx context.Context, id, companyID uint64, fields map[string]any) (*models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	CompanyID    uint64
	CreatedByID  *uint64
	AssignedToID *uint64
	Status       *models.TaskStatus
	Page         int
	PageSize     int
}

// CompanyRepository defines the interface for company data access
type CompanyRepository interface {
	// FindByName finds a company by its unique name
	FindByName(ctx context.Context, name string) (*models.Company, error)

	// CreateWithManager creates a company and its first manager in one transaction
	CreateWithManager(ctx context.Context, company *models.Company, manager *models.User) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindInCompany finds an active user of a company, optionally of a given role
	FindInCompany(ctx context.Context, id, companyID uint64, role *models.Role) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// ListReportees lists the active reportees of a company supervised by managerID
	ListReportees(ctx context.Context, companyID, managerID uint64) ([]models.User, error)
}
