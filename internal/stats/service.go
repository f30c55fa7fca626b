package stats

import (
	"projetakip-backend/internal/models"

	"gorm.io/gorm"
)

// Türetilmiş rakamlar hiçbir zaman tabloya yazılmaz, her çağrıda güncel
// satırlardan yeniden hesaplanır. Veri hacmi küçük olduğu için cache yok.

type ProjectStatistics struct {
	TotalTasks                  int64   `json:"total_tasks"`
	CompletedTasks              int64   `json:"completed_tasks"`
	CompletionPercentage        float64 `json:"completion_percentage"`
	TotalExpenditure            float64 `json:"total_expenditure"`
	BudgetRemaining             float64 `json:"budget_remaining"`
	BudgetUtilizationPercentage float64 `json:"budget_utilization_percentage"`
}

type TaskExpenditureTotal struct {
	TaskID uint    `json:"task_id"`
	Title  string  `json:"title"`
	Total  float64 `json:"total"`
}

// ForProject proje istatistiklerini hesaplar. TotalExpenditure yalnızca
// proje seviyesi Expenditure satırlarını toplar; görev giderleri ayrı
// defterdir ve buraya karışmaz. BudgetRemaining negatif olabilir (bütçe
// aşımı geçerli bir sonuçtur). Sıfır payda daima 0 döner, NaN değil.
func ForProject(db *gorm.DB, project *models.Project) (*ProjectStatistics, error) {
	s := &ProjectStatistics{}

	if err := db.Model(&models.Task{}).
		Where("project_id = ?", project.ID).
		Count(&s.TotalTasks).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", project.ID, models.TaskStatusCompleted).
		Count(&s.CompletedTasks).Error; err != nil {
		return nil, err
	}

	if s.TotalTasks > 0 {
		s.CompletionPercentage = float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
	}

	if err := db.Model(&models.Expenditure{}).
		Where("project_id = ?", project.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&s.TotalExpenditure).Error; err != nil {
		return nil, err
	}

	s.BudgetRemaining = project.Budget - s.TotalExpenditure

	if project.Budget > 0 {
		s.BudgetUtilizationPercentage = s.TotalExpenditure / project.Budget * 100
	}

	return s, nil
}

// TaskTotalExpenditure görevin TaskExpenditure toplamını döner, kayıt
// yoksa 0.
func TaskTotalExpenditure(db *gorm.DB, taskID uint) (float64, error) {
	var total float64
	err := db.Model(&models.TaskExpenditure{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ProjectTaskExpenditureRollup projenin her görevi için görev gideri
// toplamını döner (gideri olmayan görevler 0 ile listelenir). Proje
// seviyesi Expenditure defteriyle birleştirilmez.
func ProjectTaskExpenditureRollup(db *gorm.DB, projectID uint) ([]TaskExpenditureTotal, error) {
	var rows []TaskExpenditureTotal
	err := db.Table("tasks").
		Select("tasks.id AS task_id, tasks.title AS title, COALESCE(SUM(task_expenditures.amount), 0) AS total").
		Joins("LEFT JOIN task_expenditures ON task_expenditures.task_id = tasks.id").
		Where("tasks.project_id = ?", projectID).
		Group("tasks.id, tasks.title").
		Order("tasks.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []TaskExpenditureTotal{}
	}
	return rows, nil
}
