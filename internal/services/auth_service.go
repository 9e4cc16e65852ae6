package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

var (
	ErrUsernameTaken         = errors.New("username already exists")
	ErrCompanyNameTaken      = errors.New("company already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUsernameTooShort      = fmt.Errorf("username must be at least %d characters", constants.MinUsernameLength)
	ErrUsernameTooLong       = fmt.Errorf("username must be at most %d characters", constants.MaxUsernameLength)
	ErrPasswordTooShort      = fmt.Errorf("password must be at least %d characters", constants.MinPasswordLength)
	ErrPasswordTooLong       = fmt.Errorf("password must be at most %d bytes", constants.MaxPasswordLength)
	ErrCompanyNameRequired   = errors.New("company name is required")
	ErrUserNotFound          = errors.New("user not found")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateUser    = errors.New("failed to create user")
	ErrFailedToCreateCompany = errors.New("failed to create company")
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// AuthService handles signup and session issuance.
type AuthService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	hasher      Hasher
	codec       *auth.TokenCodec
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, hasher Hasher, codec *auth.TokenCodec) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		hasher:      hasher,
		codec:       codec,
	}
}

// SignupInput represents the information needed to open a company with its first manager.
type SignupInput struct {
	CompanyName string
	Username    string
	Password    string
}

// Signup creates a company and its manager.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, *models.Company, error) {
	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		return nil, nil, ErrCompanyNameRequired
	}
	username, err := validateCredentials(input.Username, input.Password)
	if err != nil {
		return nil, nil, err
	}

	if err := ensureUsernameFree(ctx, s.userRepo, username); err != nil {
		return nil, nil, err
	}

	if _, err := s.companyRepo.FindByName(ctx, companyName); err == nil {
		return nil, nil, ErrCompanyNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check company name: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFailedToHashPassword, err)
	}

	company := &models.Company{Name: companyName}
	manager := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         models.RoleManager,
		IsActive:     true,
	}

	if err := s.companyRepo.CreateWithManager(ctx, company, manager); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateCompany) && errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, nil, ErrCompanyNameTaken
		case errors.Is(err, repository.ErrCreateManager) && errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrCreateCompany):
			return nil, nil, fmt.Errorf("%w: %w", ErrFailedToCreateCompany, err)
		case errors.Is(err, repository.ErrCreateManager):
			return nil, nil, fmt.Errorf("%w: %w", ErrFailedToCreateUser, err)
		default:
			return nil, nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return manager, company, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Session is a freshly issued token and the user it identifies.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.codec.Encode(auth.Claims{
		SubjectID: user.ID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GetUser retrieves the user behind a principal, inside its company.
func (s *AuthService) GetUser(ctx context.Context, actor auth.Principal) (*models.User, error) {
	user, err := s.userRepo.FindInCompany(ctx, actor.SubjectID, actor.CompanyID, &actor.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// validateCredentials checks lengths and returns the trimmed username.
func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < constants.MinUsernameLength {
		return "", ErrUsernameTooShort
	}
	if utf8.RuneCountInString(username) > constants.MaxUsernameLength {
		return "", ErrUsernameTooLong
	}
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	return username, nil
}

func ensureUsernameFree(ctx context.Context, userRepo repository.UserRepository, username string) error {
	if _, err := userRepo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}
