package models

import "time"

// Expenditure - proje seviyesi gider kaydı. Görev seviyesindeki
// TaskExpenditure defterinden bağımsız tutulur, hiçbir istatistikte
// birleştirilmez.
type Expenditure struct {
	ID          uint      `gorm:"primaryKey"`
	ProjectID   uint      `gorm:"index;not null"`
	Project     Project   `gorm:"foreignKey:ProjectID"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	Amount      float64   `gorm:"not null"`
	Date        time.Time `gorm:"index;not null"`
	Receipt     string    `gorm:"size:255"` // opsiyonel fiş/fatura referansı
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
