package project

import (
	"log"
	"os"
	"strings"
	"time"

	"projetakip-backend/internal/database"
	"projetakip-backend/internal/models"
	"projetakip-backend/internal/stats"
	"projetakip-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	UserID        *uint    `json:"user_id"` // proje yöneticisi
	Budget        *float64 `json:"budget"`
	Status        string   `json:"status"`
	StartDate     string   `json:"start_date"` // "2025-01-01"
	DueDate       string   `json:"due_date"`
	CompletedDate *string  `json:"completed_date"`
}

type UpdateProjectRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	UserID        *uint    `json:"user_id"`
	Budget        *float64 `json:"budget"`
	Status        *string  `json:"status"`
	StartDate     *string  `json:"start_date"`
	DueDate       *string  `json:"due_date"`
	CompletedDate *string  `json:"completed_date"`
}

type ProjectResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	UserID        uint    `json:"user_id"`
	ManagerName   string  `json:"manager_name"`
	Budget        float64 `json:"budget"`
	Status        string  `json:"status"`
	StartDate     string  `json:"start_date"`
	DueDate       string  `json:"due_date"`
	CompletedDate *string `json:"completed_date"`
}

func toResponse(p *models.Project) ProjectResponse {
	res := ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UserID:      p.UserID,
		ManagerName: p.Manager.Name,
		Budget:      p.Budget,
		Status:      string(p.Status),
		StartDate:   p.StartDate.Format("2006-01-02"),
		DueDate:     p.DueDate.Format("2006-01-02"),
	}
	if p.CompletedDate != nil {
		s := p.CompletedDate.Format("2006-01-02")
		res.CompletedDate = &s
	}
	return res
}

func userExists(id uint) bool {
	var n int64
	database.DB.Model(&models.User{}).Where("id = ?", id).Count(&n)
	return n > 0
}

func inSet(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// -------------------------
// Project CRUD
// -------------------------

// GET /api/projects
func ListProjectsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var projects []models.Project
		if err := database.DB.Preload("Manager").Order("id asc").Find(&projects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Projeler listelenemedi")
		}

		res := make([]ProjectResponse, 0, len(projects))
		for i := range projects {
			res = append(res, toResponse(&projects[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/projects
func CreateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProjectRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		ve := validation.Errors{}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			ve.Add("name", "name alanı zorunlu")
		}

		if body.UserID == nil {
			ve.Add("user_id", "user_id alanı zorunlu")
		} else if !userExists(*body.UserID) {
			ve.Add("user_id", "seçilen user_id mevcut değil")
		}

		if body.Budget == nil {
			ve.Add("budget", "budget alanı zorunlu")
		} else if *body.Budget < 0 {
			ve.Add("budget", "budget 0'dan küçük olamaz")
		}

		status := models.ProjectStatusToDo
		if strings.TrimSpace(body.Status) != "" {
			if !inSet(body.Status, models.ProjectStatuses) {
				ve.Add("status", "status şunlardan biri olmalı: "+strings.Join(models.ProjectStatuses, ", "))
			} else {
				status = models.ProjectStatus(body.Status)
			}
		}

		var startDate, dueDate time.Time
		var completedDate *time.Time
		var err error

		if body.StartDate == "" {
			ve.Add("start_date", "start_date alanı zorunlu")
		} else if startDate, err = time.Parse("2006-01-02", body.StartDate); err != nil {
			ve.Add("start_date", "start_date formatı 'YYYY-MM-DD' olmalı")
		}

		if body.DueDate == "" {
			ve.Add("due_date", "due_date alanı zorunlu")
		} else if dueDate, err = time.Parse("2006-01-02", body.DueDate); err != nil {
			ve.Add("due_date", "due_date formatı 'YYYY-MM-DD' olmalı")
		}

		if body.CompletedDate != nil {
			d, err := time.Parse("2006-01-02", *body.CompletedDate)
			if err != nil {
				ve.Add("completed_date", "completed_date formatı 'YYYY-MM-DD' olmalı")
			} else {
				completedDate = &d
			}
		}

		// Tarih sıralaması ancak iki tarih de çözülebildiyse kontrol edilir
		if _, ok := ve["start_date"]; !ok {
			if _, ok := ve["due_date"]; !ok && dueDate.Before(startDate) {
				ve.Add("due_date", "due_date start_date'den önce olamaz")
			}
			if completedDate != nil && completedDate.Before(startDate) {
				ve.Add("completed_date", "completed_date start_date'den önce olamaz")
			}
		}

		if ve.Any() {
			return ve
		}

		p := models.Project{
			Name:          body.Name,
			Description:   body.Description,
			UserID:        *body.UserID,
			Budget:        *body.Budget,
			Status:        status,
			StartDate:     startDate,
			DueDate:       dueDate,
			CompletedDate: completedDate,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Proje oluşturulamadı")
		}

		database.DB.Preload("Manager").First(&p, p.ID)
		return c.Status(fiber.StatusCreated).JSON(toResponse(&p))
	}
}

// GET /api/projects/:id
func GetProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.Preload("Manager").First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}
		return c.JSON(toResponse(&p))
	}
}

// PUT/PATCH /api/projects/:id
func UpdateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		var body UpdateProjectRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		ve := validation.Errors{}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				ve.Add("name", "name boş olamaz")
			} else {
				p.Name = name
			}
		}

		if body.Description != nil {
			p.Description = *body.Description
		}

		if body.UserID != nil {
			if !userExists(*body.UserID) {
				ve.Add("user_id", "seçilen user_id mevcut değil")
			} else {
				p.UserID = *body.UserID
			}
		}

		if body.Budget != nil {
			if *body.Budget < 0 {
				ve.Add("budget", "budget 0'dan küçük olamaz")
			} else {
				p.Budget = *body.Budget
			}
		}

		if body.Status != nil {
			if !inSet(*body.Status, models.ProjectStatuses) {
				ve.Add("status", "status şunlardan biri olmalı: "+strings.Join(models.ProjectStatuses, ", "))
			} else {
				p.Status = models.ProjectStatus(*body.Status)
			}
		}

		if body.StartDate != nil {
			if d, err := time.Parse("2006-01-02", *body.StartDate); err != nil {
				ve.Add("start_date", "start_date formatı 'YYYY-MM-DD' olmalı")
			} else {
				p.StartDate = d
			}
		}

		if body.DueDate != nil {
			if d, err := time.Parse("2006-01-02", *body.DueDate); err != nil {
				ve.Add("due_date", "due_date formatı 'YYYY-MM-DD' olmalı")
			} else {
				p.DueDate = d
			}
		}

		if body.CompletedDate != nil {
			if d, err := time.Parse("2006-01-02", *body.CompletedDate); err != nil {
				ve.Add("completed_date", "completed_date formatı 'YYYY-MM-DD' olmalı")
			} else {
				p.CompletedDate = &d
			}
		}

		// Sıralama güncel (birleştirilmiş) değerler üzerinden kontrol edilir
		if !ve.Any() {
			if p.DueDate.Before(p.StartDate) {
				ve.Add("due_date", "due_date start_date'den önce olamaz")
			}
			if p.CompletedDate != nil && p.CompletedDate.Before(p.StartDate) {
				ve.Add("completed_date", "completed_date start_date'den önce olamaz")
			}
		}

		if ve.Any() {
			return ve
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Proje güncellenemedi")
		}

		database.DB.Preload("Manager").First(&p, p.ID)
		return c.JSON(toResponse(&p))
	}
}

// DELETE /api/projects/:id
// Görevler, görevlerin alt kayıtları ve proje giderleri tek transaction
// içinde silinir; fiş dosyaları commit sonrası temizlenir.
func DeleteProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		var receiptPaths []string
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var taskIDs []uint
			if err := tx.Model(&models.Task{}).Where("project_id = ?", p.ID).Pluck("id", &taskIDs).Error; err != nil {
				return err
			}
			if len(taskIDs) > 0 {
				if err := tx.Model(&models.TaskExpenditure{}).
					Where("task_id IN ? AND receipt_path <> ''", taskIDs).
					Pluck("receipt_path", &receiptPaths).Error; err != nil {
					return err
				}
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
					return err
				}
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TimeEntry{}).Error; err != nil {
					return err
				}
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskExpenditure{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("project_id = ?", p.ID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", p.ID).Delete(&models.Expenditure{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Project{}, p.ID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Proje silinemedi")
		}

		for _, path := range receiptPaths {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("Fiş dosyası silinemedi: %s: %v", path, err)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// İstatistikler
// -------------------------

// GET /api/projects/:id/statistics
func StatisticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		s, err := stats.ForProject(database.DB, &p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İstatistikler hesaplanamadı")
		}
		return c.JSON(s)
	}
}

// GET /api/projects/:id/task-expenditure-rollup
// Görev başına görev gideri toplamları. Proje seviyesi gider defteriyle
// birleştirilmez.
func TaskExpenditureRollupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		rows, err := stats.ProjectTaskExpenditureRollup(database.DB, p.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev gider dökümü hesaplanamadı")
		}
		return c.JSON(rows)
	}
}
