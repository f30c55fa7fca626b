package models

import "time"

type ProjectStatus string

const (
	ProjectStatusToDo       ProjectStatus = "To Do"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusCompleted  ProjectStatus = "Completed"
)

// Geçerli proje durumları (doğrulama mesajlarında da kullanılıyor)
var ProjectStatuses = []string{
	string(ProjectStatusToDo),
	string(ProjectStatusInProgress),
	string(ProjectStatusCompleted),
}

type Project struct {
	ID            uint          `gorm:"primaryKey"`
	Name          string        `gorm:"size:255;not null"`
	Description   string        `gorm:"type:text"`
	UserID        uint          `gorm:"index;not null"` // proje yöneticisi
	Manager       User          `gorm:"foreignKey:UserID"`
	Budget        float64       `gorm:"not null;default:0"`
	Status        ProjectStatus `gorm:"size:20;not null"`
	StartDate     time.Time     `gorm:"not null"`
	DueDate       time.Time     `gorm:"not null"`
	CompletedDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Tasks        []Task
	Expenditures []Expenditure
}
