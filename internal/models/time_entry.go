package models

import "time"

type TimeEntry struct {
	ID          uint      `gorm:"primaryKey"`
	TaskID      uint      `gorm:"index;not null"`
	Task        Task      `gorm:"foreignKey:TaskID"`
	UserID      uint      `gorm:"index;not null"`
	User        User      `gorm:"foreignKey:UserID"`
	StartTime   time.Time `gorm:"not null"`
	EndTime     *time.Time
	Hours       float64 `gorm:"not null"`
	Description string  `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
