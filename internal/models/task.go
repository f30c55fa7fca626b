package models

import "time"

type TaskStatus string

const (
	TaskStatusToDo        TaskStatus = "To Do"
	TaskStatusInProgress  TaskStatus = "In Progress"
	TaskStatusUnderReview TaskStatus = "Under Review"
	TaskStatusCompleted   TaskStatus = "Completed"
)

var TaskStatuses = []string{
	string(TaskStatusToDo),
	string(TaskStatusInProgress),
	string(TaskStatusUnderReview),
	string(TaskStatusCompleted),
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityUrgent TaskPriority = "Urgent"
)

var TaskPriorities = []string{
	string(TaskPriorityLow),
	string(TaskPriorityMedium),
	string(TaskPriorityHigh),
	string(TaskPriorityUrgent),
}

type Task struct {
	ID          uint         `gorm:"primaryKey"`
	ProjectID   uint         `gorm:"index;not null"`
	Project     Project      `gorm:"foreignKey:ProjectID"`
	AssignedTo  *uint        `gorm:"index"`
	Assignee    *User        `gorm:"foreignKey:AssignedTo"`
	Title       string       `gorm:"size:255;not null"`
	Description string       `gorm:"type:text"`
	Status      TaskStatus   `gorm:"size:20;not null"`
	Priority    TaskPriority `gorm:"size:10;not null"`
	Budget      *float64
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Expenditures []TaskExpenditure
	TimeEntries  []TimeEntry
	Comments     []TaskComment
}
