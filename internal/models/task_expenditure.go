package models

import "time"

// TaskExpenditure - görev seviyesi gider kaydı. ReceiptPath dolu ise
// diskte yüklenmiş bir fiş dosyasına işaret eder; kayıt silinince veya
// fiş değiştirilince dosya da silinir.
type TaskExpenditure struct {
	ID          uint      `gorm:"primaryKey"`
	TaskID      uint      `gorm:"index;not null"`
	Task        Task      `gorm:"foreignKey:TaskID"`
	Description string    `gorm:"type:text;not null"`
	Amount      float64   `gorm:"not null"`
	Date        time.Time `gorm:"index;not null"`
	ReceiptPath string    `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
