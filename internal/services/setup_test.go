package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

type serviceTestEnv struct {
	db          *gorm.DB
	codec       *auth.TokenCodec
	hasher      auth.PasswordHasher
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	taskRepo    repository.TaskRepository
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, slog.New(slog.NewTextHandler(io.Discard, nil))))

	codec, err := auth.NewTokenCodec("service-test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	return &serviceTestEnv{
		db:          db,
		codec:       codec,
		hasher:      auth.PasswordHasher{Cost: bcrypt.MinCost},
		userRepo:    repository.NewUserRepository(db),
		companyRepo: repository.NewCompanyRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
	}
}

func (env *serviceTestEnv) taskService(lifecycle Lifecycle, ai *AIService) *TaskService {
	return NewTaskService(env.taskRepo, env.userRepo, lifecycle, ai)
}

func (env *serviceTestEnv) authService() *AuthService {
	return NewAuthService(env.userRepo, env.companyRepo, env.hasher, env.codec)
}

func (env *serviceTestEnv) createCompany(t *testing.T, name string) *models.Company {
	t.Helper()
	company := &models.Company{Name: name}
	require.NoError(t, env.db.Create(company).Error)
	return company
}

func (env *serviceTestEnv) createUser(t *testing.T, username string, role models.Role, companyID uint64, managerID *uint64) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "unused",
		Role:         role,
		CompanyID:    companyID,
		ManagerID:    managerID,
		IsActive:     true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func principalOf(user *models.User) auth.Principal {
	return auth.Principal{
		SubjectID: user.ID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// tenantFixture is two companies, each with a manager and a reportee, plus a
// second manager in the first company.
type tenantFixture struct {
	acme, globex                 *models.Company
	manager, coManager, reportee *models.User
	outsideManager, outsider     *models.User
}

func (env *serviceTestEnv) seedTenants(t *testing.T) tenantFixture {
	t.Helper()
	var f tenantFixture
	f.acme = env.createCompany(t, "Acme")
	f.globex = env.createCompany(t, "Globex")
	f.manager = env.createUser(t, "alice", models.RoleManager, f.acme.ID, nil)
	f.coManager = env.createUser(t, "carol", models.RoleManager, f.acme.ID, nil)
	f.reportee = env.createUser(t, "bob", models.RoleReportee, f.acme.ID, &f.manager.ID)
	f.outsideManager = env.createUser(t, "mallory", models.RoleManager, f.globex.ID, nil)
	f.outsider = env.createUser(t, "eve", models.RoleReportee, f.globex.ID, &f.outsideManager.ID)
	return f
}

func bg() context.Context {
	return context.Background()
}
