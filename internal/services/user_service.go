package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

// UserService manages the reportees supervised by managers.
type UserService struct {
	userRepo repository.UserRepository
	hasher   Hasher
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, hasher Hasher) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// CreateReporteeInput represents the credentials of a new reportee.
type CreateReporteeInput struct {
	Username string
	Password string
}

// CreateReportee adds a reportee to the manager's company, supervised by that manager.
func (s *UserService) CreateReportee(ctx context.Context, actor auth.Principal, input CreateReporteeInput) (*models.User, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	username, err := validateCredentials(input.Username, input.Password)
	if err != nil {
		return nil, err
	}

	if err := ensureUsernameFree(ctx, s.userRepo, username); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToHashPassword, err)
	}

	managerID := actor.SubjectID
	reportee := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         models.RoleReportee,
		CompanyID:    actor.CompanyID,
		ManagerID:    &managerID,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, reportee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %w", ErrFailedToCreateUser, err)
	}

	return reportee, nil
}

// ListReportees returns the reportees the manager supervises.
func (s *UserService) ListReportees(ctx context.Context, actor auth.Principal) ([]models.User, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListReportees(ctx, actor.CompanyID, actor.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reportees: %w", err)
	}
	return users, nil
}
