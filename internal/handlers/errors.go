package handlers

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// respondServiceError maps service errors onto the API error contract.
// Anything unrecognised is logged and reported as a bare 500.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrIllegalTransition):
		apierrors.IllegalTransition(c, services.ErrIllegalTransition.Error())
	case errors.Is(err, services.ErrAlreadyCompleted):
		apierrors.AlreadyCompleted(c, "")
	case errors.Is(err, services.ErrInvalidAssignee):
		apierrors.InvalidAssignee(c, "")
	case errors.Is(err, services.ErrTitleTooShort),
		errors.Is(err, services.ErrUsernameTooShort),
		errors.Is(err, services.ErrUsernameTooLong),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPasswordTooLong),
		errors.Is(err, services.ErrCompanyNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, "Invalid task status")
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrCompanyNameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		apierrors.InternalError(c, "")
	}
}
