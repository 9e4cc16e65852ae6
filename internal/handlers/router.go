package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/ratelimit"
)

// Routes bundles everything the HTTP surface needs.
type Routes struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Tasks       *TaskHandler
	Resolver    *middleware.SessionResolver
	RateLimiter *middleware.RateLimiter
	Limits      config.RateLimits
}

// Register mounts the API on r. Limits must already be validated.
// Throttling runs ahead of the auth guards so anonymous callers are counted by address.
func (rt Routes) Register(r *gin.Engine) {
	limit := func(route, raw string) gin.HandlerFunc {
		return rt.RateLimiter.Limit(route, ratelimit.MustParsePolicy(raw))
	}
	requireAuth := rt.Resolver.RequireAuth()
	manager := middleware.RequireRole(models.RoleManager)
	reportee := middleware.RequireRole(models.RoleReportee)
	taskID := middleware.RequireTaskID()

	r.Use(rt.Resolver.Authenticate())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", limit("signup", rt.Limits.Signup), rt.Auth.Signup)
			auth.POST("/login", limit("login", rt.Limits.Login), rt.Auth.Login)
			auth.POST("/logout", rt.Auth.Logout)
			auth.GET("/me", requireAuth, rt.Auth.GetCurrentUser)
		}

		users := api.Group("/users")
		{
			users.POST("/reportees", limit("create_reportee", rt.Limits.CreateReportee), requireAuth, manager, rt.Users.CreateReportee)
			users.GET("/reportees", limit("task_list", rt.Limits.TaskList), requireAuth, manager, rt.Users.ListReportees)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", limit("task_list", rt.Limits.TaskList), requireAuth, rt.Tasks.ListTasks)
			tasks.POST("", limit("task_create", rt.Limits.TaskCreate), requireAuth, manager, rt.Tasks.CreateTask)
			tasks.POST("/generate", limit("task_generate", rt.Limits.TaskGenerate), requireAuth, manager, rt.Tasks.GenerateTasks)
			tasks.GET("/:id", limit("task_list", rt.Limits.TaskList), requireAuth, taskID, rt.Tasks.GetTask)
			tasks.PATCH("/:id/assign", limit("task_assign", rt.Limits.TaskAssign), requireAuth, manager, taskID, rt.Tasks.AssignTask)
			tasks.DELETE("/:id", limit("task_delete", rt.Limits.TaskDelete), requireAuth, manager, taskID, rt.Tasks.DeleteTask)
			tasks.PATCH("/:id/status", limit("task_status_update", rt.Limits.TaskStatusUpdate), requireAuth, manager, taskID, rt.Tasks.UpdateStatusByManager)
			tasks.PATCH("/:id/status/self", limit("task_status_self_update", rt.Limits.TaskStatusSelfUpdate), requireAuth, reportee, taskID, rt.Tasks.UpdateStatusBySelf)
		}
	}
}
