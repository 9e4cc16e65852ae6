package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/ratelimit"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

const testSecret = "handler-test-secret"

var generousLimits = config.RateLimits{
	Signup:               "1000/minute",
	Login:                "1000/minute",
	CreateReportee:       "1000/minute",
	TaskList:             "1000/minute",
	TaskCreate:           "1000/minute",
	TaskAssign:           "1000/minute",
	TaskDelete:           "1000/minute",
	TaskStatusUpdate:     "1000/minute",
	TaskStatusSelfUpdate: "1000/minute",
	TaskGenerate:         "1000/minute",
}

type apiTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	codec  *auth.TokenCodec
}

type envOption func(*envOptions)

type envOptions struct {
	limits         config.RateLimits
	lifecycle      services.Lifecycle
	ai             *services.AIService
	trustedProxies []string
}

func withLimits(limits config.RateLimits) envOption {
	return func(o *envOptions) { o.limits = limits }
}

func withStrictCompletion() envOption {
	return func(o *envOptions) { o.lifecycle.StrictCompletion = true }
}

func withTrustedProxies(proxies ...string) envOption {
	return func(o *envOptions) { o.trustedProxies = proxies }
}

func withAI(ai *services.AIService) envOption {
	return func(o *envOptions) { o.ai = ai }
}

func setupAPITestEnv(t *testing.T, opts ...envOption) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	o := envOptions{limits: generousLimits}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, database.Migrate(db, log))

	codec, err := auth.NewTokenCodec(testSecret, constants.DefaultJWTAlgorithm, time.Hour)
	require.NoError(t, err)
	hasher := auth.PasswordHasher{Cost: bcrypt.MinCost}

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	resolver := middleware.NewSessionResolver(codec, log)
	router := gin.New()
	require.NoError(t, router.SetTrustedProxies(o.trustedProxies))
	Routes{
		Auth:        NewAuthHandler(services.NewAuthService(userRepo, companyRepo, hasher, codec), false, log),
		Users:       NewUserHandler(services.NewUserService(userRepo, hasher), log),
		Tasks:       NewTaskHandler(services.NewTaskService(taskRepo, userRepo, o.lifecycle, o.ai), log),
		Resolver:    resolver,
		RateLimiter: middleware.NewRateLimiter(ratelimit.NewInMemory(), resolver, log),
		Limits:      o.limits,
	}.Register(router)

	return &apiTestEnv{db: db, router: router, codec: codec}
}

func (env *apiTestEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return env.doWithHeaders(t, method, path, body, cookie, nil)
}

func (env *apiTestEnv) doWithHeaders(t *testing.T, method, path string, body any, cookie *http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.AccessTokenCookieName {
			return c
		}
	}
	t.Fatalf("response did not set %s", constants.AccessTokenCookieName)
	return nil
}

// signup opens a company and returns its manager's session cookie.
func (env *apiTestEnv) signup(t *testing.T, company, username string) *http.Cookie {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"company_name": company,
		"username":     username,
		"password":     "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return env.login(t, username, "supersecret")
}

func (env *apiTestEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

// addReportee creates a reportee under the manager and returns its id and cookie.
func (env *apiTestEnv) addReportee(t *testing.T, manager *http.Cookie, username string) (uint64, *http.Cookie) {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/users/reportees", map[string]string{
		"username": username,
		"password": "supersecret",
	}, manager)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[struct {
		ID uint64 `json:"id"`
	}](t, w)
	return created.ID, env.login(t, username, "supersecret")
}

func (env *apiTestEnv) createTask(t *testing.T, manager *http.Cookie, title string, assignee *uint64) uint64 {
	t.Helper()
	body := map[string]any{"title": title}
	if assignee != nil {
		body["assigned_to_id"] = *assignee
	}
	w := env.do(t, http.MethodPost, "/api/tasks", body, manager)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[struct {
		ID uint64 `json:"id"`
	}](t, w)
	return created.ID
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[struct {
		Code string `json:"code"`
	}](t, w).Code
}
