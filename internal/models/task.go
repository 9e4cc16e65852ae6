package models

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusDev       TaskStatus = "DEV"
	TaskStatusTest      TaskStatus = "TEST"
	TaskStatusStuck     TaskStatus = "STUCK"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// ParseTaskStatus converts a raw value into a TaskStatus, rejecting anything unknown.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(s); st {
	case TaskStatusDev, TaskStatusTest, TaskStatusStuck, TaskStatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown task status %q", s)
	}
}

type Task struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description"`
	Status       TaskStatus `gorm:"type:varchar(20);not null;default:'DEV'" json:"status"`
	AssignedToID *uint64    `gorm:"index" json:"assigned_to_id"`
	CreatedByID  uint64     `gorm:"not null;index" json:"created_by_id"`
	CompanyID    uint64     `gorm:"not null;index" json:"company_id"`
	IsDeleted    bool       `gorm:"not null;default:false;index" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	AssignedTo *User   `gorm:"foreignKey:AssignedToID" json:"-"`
	CreatedBy  User    `gorm:"foreignKey:CreatedByID" json:"-"`
	Company    Company `gorm:"foreignKey:CompanyID" json:"-"`
}
