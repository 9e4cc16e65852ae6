package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

var (
	ErrForbidden              = errors.New("operation not permitted for this role")
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleTooShort          = fmt.Errorf("task title must be at least %d characters", constants.MinTaskTitleLength)
	ErrInvalidAssignee        = errors.New("invalid reportee for this company")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService applies the task lifecycle on behalf of an authenticated principal.
// Every lookup is scoped to the principal's company; a task outside it, soft
// deleted, or not visible to the principal is reported as ErrTaskNotFound.
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	lifecycle Lifecycle
	aiService *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, lifecycle Lifecycle, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		lifecycle: lifecycle,
		aiService: aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  *string
	AssignedToID *uint64
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status   *models.TaskStatus
	Page     int
	PageSize int
}

// CreateTask creates a task in the manager's company, optionally assigned.
func (s *TaskService) CreateTask(ctx context.Context, actor auth.Principal, input CreateTaskInput) (*models.Task, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if utf8.RuneCountInString(title) < constants.MinTaskTitleLength {
		return nil, ErrTitleTooShort
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      models.TaskStatusDev,
		CreatedByID: actor.SubjectID,
		CompanyID:   actor.CompanyID,
	}

	if input.AssignedToID != nil {
		reportee, err := s.findReportee(ctx, *input.AssignedToID, actor.CompanyID)
		if err != nil {
			return nil, err
		}
		task.AssignedToID = &reportee.ID
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// AssignTask assigns or reassigns a task to a reportee of the same company.
// Any manager of the company may assign, whatever the task's status.
func (s *TaskService) AssignTask(ctx context.Context, actor auth.Principal, taskID, reporteeID uint64) (*models.Task, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	if _, err := s.findTask(ctx, taskID, actor.CompanyID); err != nil {
		return nil, err
	}

	reportee, err := s.findReportee(ctx, reporteeID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	task, err := s.update(ctx, taskID, actor.CompanyID, map[string]any{"assigned_to_id": reportee.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}
	return task, nil
}

// ListTasks returns the tasks a principal can see: the ones a manager created
// or the ones assigned to a reportee.
func (s *TaskService) ListTasks(ctx context.Context, actor auth.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		CompanyID: actor.CompanyID,
		Status:    input.Status,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}

	switch actor.Role {
	case models.RoleManager:
		filter.CreatedByID = &actor.SubjectID
	case models.RoleReportee:
		filter.AssignedToID = &actor.SubjectID
	default:
		return nil, 0, ErrForbidden
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a single task under the same visibility rule as ListTasks.
func (s *TaskService) GetTask(ctx context.Context, actor auth.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	if !visibleTo(actor, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// DeleteTask soft deletes a task. Only its creator may do so.
func (s *TaskService) DeleteTask(ctx context.Context, actor auth.Principal, taskID uint64) error {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return err
	}

	task, err := s.findTask(ctx, taskID, actor.CompanyID)
	if err != nil {
		return err
	}

	if task.CreatedByID != actor.SubjectID {
		return ErrTaskNotFound
	}

	if _, err := s.update(ctx, taskID, actor.CompanyID, map[string]any{"is_deleted": true}); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// UpdateStatusByManager sets any status on a task the manager created.
func (s *TaskService) UpdateStatusByManager(ctx context.Context, actor auth.Principal, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	if task.CreatedByID != actor.SubjectID {
		return nil, ErrTaskNotFound
	}

	if err := s.lifecycle.CheckManagerTransition(task.Status, status); err != nil {
		return nil, err
	}

	task, err = s.update(ctx, taskID, actor.CompanyID, map[string]any{"status": status})
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return task, nil
}

// UpdateStatusBySelf lets the assigned reportee mark a task COMPLETED.
func (s *TaskService) UpdateStatusBySelf(ctx context.Context, actor auth.Principal, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if err := requireRole(actor, models.RoleReportee); err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	if task.AssignedToID == nil || *task.AssignedToID != actor.SubjectID {
		return nil, ErrTaskNotFound
	}

	if err := s.lifecycle.CheckSelfTransition(task.Status, status); err != nil {
		return nil, err
	}

	task, err = s.update(ctx, taskID, actor.CompanyID, map[string]any{"status": models.TaskStatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return task, nil
}

// GenerateTasks asks the assistant to draft tasks from free text, proposing
// one of the manager's reportees as assignee where one fits. Nothing is
// persisted; the manager creates the tasks they keep.
func (s *TaskService) GenerateTasks(ctx context.Context, actor auth.Principal, text string) ([]GeneratedTask, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	reportees, err := s.userRepo.ListReportees(ctx, actor.CompanyID, actor.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reportees: %w", err)
	}
	reporteeIDs := make(map[string]uint64, len(reportees))
	usernames := make([]string, len(reportees))
	for i, r := range reportees {
		reporteeIDs[r.Username] = r.ID
		usernames[i] = r.Username
	}

	drafts, err := s.aiService.DraftTasks(ctx, text, usernames)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if utf8.RuneCountInString(draft.Title) < constants.MinTaskTitleLength {
			continue
		}
		// A name outside the manager's reportees is dropped rather than guessed at.
		if id, ok := reporteeIDs[draft.SuggestedAssignee]; ok {
			draft.SuggestedAssigneeID = &id
		} else {
			draft.SuggestedAssignee = ""
		}
		validTasks = append(validTasks, draft)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID, companyID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findReportee(ctx context.Context, userID, companyID uint64) (*models.User, error) {
	role := models.RoleReportee
	user, err := s.userRepo.FindInCompany(ctx, userID, companyID, &role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("failed to find reportee: %w", err)
	}
	return user, nil
}

func (s *TaskService) update(ctx context.Context, taskID, companyID uint64, fields map[string]any) (*models.Task, error) {
	task, err := s.taskRepo.UpdateFields(ctx, taskID, companyID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func visibleTo(actor auth.Principal, task *models.Task) bool {
	switch actor.Role {
	case models.RoleManager:
		return task.CreatedByID == actor.SubjectID
	case models.RoleReportee:
		return task.AssignedToID != nil && *task.AssignedToID == actor.SubjectID
	default:
		return false
	}
}

func requireRole(actor auth.Principal, role models.Role) error {
	if actor.Role != role {
		return ErrForbidden
	}
	return nil
}
