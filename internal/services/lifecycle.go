package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

var (
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrIllegalTransition = errors.New("reportees may only mark a task as COMPLETED")
	ErrAlreadyCompleted  = errors.New("task is already completed")
)

// Lifecycle decides which status changes are legal.
//
// Managers may move a task between any two statuses, including out of
// COMPLETED. Reportees may only move an open task to COMPLETED, after which
// the task is closed to them. StrictCompletion closes COMPLETED tasks to
// managers too.
type Lifecycle struct {
	StrictCompletion bool
}

// CheckManagerTransition validates a status change requested by the creating manager.
func (l Lifecycle) CheckManagerTransition(current, target models.TaskStatus) error {
	if _, err := models.ParseTaskStatus(string(target)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	switch current {
	case models.TaskStatusDev, models.TaskStatusTest, models.TaskStatusStuck:
		return nil
	case models.TaskStatusCompleted:
		if l.StrictCompletion {
			return ErrAlreadyCompleted
		}
		return nil
	default:
		return fmt.Errorf("%w: stored status %q", ErrInvalidStatus, current)
	}
}

// CheckSelfTransition validates a status change requested by the assigned reportee.
// A completed task is rejected before the target is looked at.
func (l Lifecycle) CheckSelfTransition(current, target models.TaskStatus) error {
	switch current {
	case models.TaskStatusCompleted:
		return ErrAlreadyCompleted
	case models.TaskStatusDev, models.TaskStatusTest, models.TaskStatusStuck:
	default:
		return fmt.Errorf("%w: stored status %q", ErrInvalidStatus, current)
	}

	switch target {
	case models.TaskStatusCompleted:
		return nil
	case models.TaskStatusDev, models.TaskStatusTest, models.TaskStatusStuck:
		return ErrIllegalTransition
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
}
