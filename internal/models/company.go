package models

import "time"

// Company is the tenant boundary. Every user and task belongs to exactly one.
type Company struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Users []User `gorm:"foreignKey:CompanyID" json:"-"`
	Tasks []Task `gorm:"foreignKey:CompanyID" json:"-"`
}
