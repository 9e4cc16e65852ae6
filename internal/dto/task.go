package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64            `json:"id"`
	Title        string            `json:"title"`
	Description  *string           `json:"description"`
	Status       models.TaskStatus `json:"status"`
	AssignedToID *uint64           `json:"assigned_to_id"`
	CreatedByID  uint64            `json:"created_by_id"`
	CompanyID    uint64            `json:"company_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// GeneratedTaskDTO is a task suggestion produced by the assistant
type GeneratedTaskDTO struct {
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	SuggestedAssignee   string  `json:"suggested_assignee,omitempty"`
	SuggestedAssigneeID *uint64 `json:"suggested_assignee_id,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		CompanyID:    task.CompanyID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToGeneratedTaskDTOs converts assistant suggestions
func ToGeneratedTaskDTOs(tasks []services.GeneratedTask) []GeneratedTaskDTO {
	items := make([]GeneratedTaskDTO, len(tasks))
	for i, t := range tasks {
		items[i] = GeneratedTaskDTO{
			Title:               t.Title,
			Description:         t.Description,
			SuggestedAssignee:   t.SuggestedAssignee,
			SuggestedAssigneeID: t.SuggestedAssigneeID,
		}
	}
	return items
}
