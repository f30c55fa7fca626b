package task

import (
	"fmt"
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

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ProjectID   *uint    `json:"project_id"`
	AssignedTo  *uint    `json:"assigned_to"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Budget      *float64 `json:"budget"`
	StartDate   *string  `json:"start_date"`
	DueDate     *string  `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	ProjectID   *uint    `json:"project_id"`
	AssignedTo  *uint    `json:"assigned_to"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	Budget      *float64 `json:"budget"`
	StartDate   *string  `json:"start_date"`
	DueDate     *string  `json:"due_date"`
}

type TaskResponse struct {
	ID           uint     `json:"id"`
	ProjectID    uint     `json:"project_id"`
	ProjectName  string   `json:"project_name"`
	AssignedTo   *uint    `json:"assigned_to"`
	AssigneeName *string  `json:"assignee_name"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	Budget       *float64 `json:"budget"`
	StartDate    *string  `json:"start_date"`
	DueDate      *string  `json:"due_date"`
}

// Detay cevabı türetilmiş görev gideri toplamını da taşır
type TaskDetailResponse struct {
	TaskResponse
	TotalExpenditure float64 `json:"total_expenditure"`
}

func toResponse(t *models.Task) TaskResponse {
	res := TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		ProjectName: t.Project.Name,
		AssignedTo:  t.AssignedTo,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Budget:      t.Budget,
	}
	if t.Assignee != nil {
		name := t.Assignee.Name
		res.AssigneeName = &name
	}
	if t.StartDate != nil {
		s := t.StartDate.Format("2006-01-02")
		res.StartDate = &s
	}
	if t.DueDate != nil {
		s := t.DueDate.Format("2006-01-02")
		res.DueDate = &s
	}
	return res
}

func projectExists(id uint) bool {
	var n int64
	database.DB.Model(&models.Project{}).Where("id = ?", id).Count(&n)
	return n > 0
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

// createTask gövdeyi doğrulayıp kaydı oluşturur; hem /tasks hem
// /projects/:id/tasks bu yoldan geçer.
func createTask(c *fiber.Ctx, forcedProjectID *uint) error {
	var body CreateTaskRequest
	if err := validation.BindStrict(c, &body); err != nil {
		return err
	}

	if forcedProjectID != nil {
		body.ProjectID = forcedProjectID
	}

	ve := validation.Errors{}

	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" {
		ve.Add("title", "title alanı zorunlu")
	}

	if body.ProjectID == nil {
		ve.Add("project_id", "project_id alanı zorunlu")
	} else if !projectExists(*body.ProjectID) {
		ve.Add("project_id", "seçilen project_id mevcut değil")
	}

	if body.AssignedTo != nil && !userExists(*body.AssignedTo) {
		ve.Add("assigned_to", "seçilen assigned_to mevcut değil")
	}

	status := models.TaskStatusToDo
	if strings.TrimSpace(body.Status) != "" {
		if !inSet(body.Status, models.TaskStatuses) {
			ve.Add("status", "status şunlardan biri olmalı: "+strings.Join(models.TaskStatuses, ", "))
		} else {
			status = models.TaskStatus(body.Status)
		}
	}

	if body.Priority == "" {
		ve.Add("priority", "priority alanı zorunlu")
	} else if !inSet(body.Priority, models.TaskPriorities) {
		ve.Add("priority", "priority şunlardan biri olmalı: "+strings.Join(models.TaskPriorities, ", "))
	}

	if body.Budget != nil && *body.Budget < 0 {
		ve.Add("budget", "budget 0'dan küçük olamaz")
	}

	var startDate, dueDate *time.Time
	if body.StartDate != nil {
		if d, err := time.Parse("2006-01-02", *body.StartDate); err != nil {
			ve.Add("start_date", "start_date formatı 'YYYY-MM-DD' olmalı")
		} else {
			startDate = &d
		}
	}
	if body.DueDate != nil {
		if d, err := time.Parse("2006-01-02", *body.DueDate); err != nil {
			ve.Add("due_date", "due_date formatı 'YYYY-MM-DD' olmalı")
		} else {
			dueDate = &d
		}
	}
	// Görev tarihlerinde sıralama kısıtı yok (UI tarafında ele alınıyor)

	if ve.Any() {
		return ve
	}

	t := models.Task{
		Title:       body.Title,
		Description: body.Description,
		ProjectID:   *body.ProjectID,
		AssignedTo:  body.AssignedTo,
		Status:      status,
		Priority:    models.TaskPriority(body.Priority),
		Budget:      body.Budget,
		StartDate:   startDate,
		DueDate:     dueDate,
	}

	if err := database.DB.Create(&t).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Görev oluşturulamadı")
	}

	database.DB.Preload("Project").Preload("Assignee").First(&t, t.ID)
	return c.Status(fiber.StatusCreated).JSON(toResponse(&t))
}

// -------------------------
// Task CRUD
// -------------------------

// GET /api/tasks?project_id=...&status=...&assigned_to=...
func ListTasksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Task{}).Preload("Project").Preload("Assignee")

		if pidStr := c.Query("project_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "project_id geçersiz")
			}
			dbq = dbq.Where("project_id = ?", pid)
		}

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		if aStr := c.Query("assigned_to"); aStr != "" {
			var aid uint
			if _, err := fmt.Sscan(aStr, &aid); err != nil || aid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "assigned_to geçersiz")
			}
			dbq = dbq.Where("assigned_to = ?", aid)
		}

		var tasks []models.Task
		if err := dbq.Order("id asc").Find(&tasks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görevler listelenemedi")
		}

		res := make([]TaskResponse, 0, len(tasks))
		for i := range tasks {
			res = append(res, toResponse(&tasks[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/projects/:id/tasks
func ListTasksByProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		var tasks []models.Task
		if err := database.DB.Preload("Project").Preload("Assignee").
			Where("project_id = ?", p.ID).
			Order("id asc").
			Find(&tasks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görevler listelenemedi")
		}

		res := make([]TaskResponse, 0, len(tasks))
		for i := range tasks {
			res = append(res, toResponse(&tasks[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/tasks
func CreateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return createTask(c, nil)
	}
}

// POST /api/projects/:id/tasks
func CreateTaskForProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}
		return createTask(c, &p.ID)
	}
}

// GET /api/tasks/:id
func GetTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t models.Task
		if err := database.DB.Preload("Project").Preload("Assignee").
			First(&t, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		total, err := stats.TaskTotalExpenditure(database.DB, t.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev gideri hesaplanamadı")
		}

		return c.JSON(TaskDetailResponse{
			TaskResponse:     toResponse(&t),
			TotalExpenditure: total,
		})
	}
}

// PUT/PATCH /api/tasks/:id
func UpdateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t models.Task
		if err := database.DB.First(&t, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		var body UpdateTaskRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		ve := validation.Errors{}

		if body.Title != nil {
			title := strings.TrimSpace(*body.Title)
			if title == "" {
				ve.Add("title", "title boş olamaz")
			} else {
				t.Title = title
			}
		}

		if body.Description != nil {
			t.Description = *body.Description
		}

		if body.ProjectID != nil {
			if !projectExists(*body.ProjectID) {
				ve.Add("project_id", "seçilen project_id mevcut değil")
			} else {
				t.ProjectID = *body.ProjectID
			}
		}

		if body.AssignedTo != nil {
			if !userExists(*body.AssignedTo) {
				ve.Add("assigned_to", "seçilen assigned_to mevcut değil")
			} else {
				t.AssignedTo = body.AssignedTo
			}
		}

		if body.Status != nil {
			if !inSet(*body.Status, models.TaskStatuses) {
				ve.Add("status", "status şunlardan biri olmalı: "+strings.Join(models.TaskStatuses, ", "))
			} else {
				t.Status = models.TaskStatus(*body.Status)
			}
		}

		if body.Priority != nil {
			if !inSet(*body.Priority, models.TaskPriorities) {
				ve.Add("priority", "priority şunlardan biri olmalı: "+strings.Join(models.TaskPriorities, ", "))
			} else {
				t.Priority = models.TaskPriority(*body.Priority)
			}
		}

		if body.Budget != nil {
			if *body.Budget < 0 {
				ve.Add("budget", "budget 0'dan küçük olamaz")
			} else {
				t.Budget = body.Budget
			}
		}

		if body.StartDate != nil {
			if d, err := time.Parse("2006-01-02", *body.StartDate); err != nil {
				ve.Add("start_date", "start_date formatı 'YYYY-MM-DD' olmalı")
			} else {
				t.StartDate = &d
			}
		}

		if body.DueDate != nil {
			if d, err := time.Parse("2006-01-02", *body.DueDate); err != nil {
				ve.Add("due_date", "due_date formatı 'YYYY-MM-DD' olmalı")
			} else {
				t.DueDate = &d
			}
		}

		if ve.Any() {
			return ve
		}

		if err := database.DB.Save(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev güncellenemedi")
		}

		database.DB.Preload("Project").Preload("Assignee").First(&t, t.ID)
		return c.JSON(toResponse(&t))
	}
}

// DELETE /api/tasks/:id
// Yorumlar, zaman kayıtları ve görev giderleri tek transaction içinde
// silinir; fiş dosyaları commit sonrası temizlenir.
func DeleteTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t models.Task
		if err := database.DB.First(&t, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		var receiptPaths []string
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.TaskExpenditure{}).
				Where("task_id = ? AND receipt_path <> ''", t.ID).
				Pluck("receipt_path", &receiptPaths).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id = ?", t.ID).Delete(&models.TaskComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id = ?", t.ID).Delete(&models.TimeEntry{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id = ?", t.ID).Delete(&models.TaskExpenditure{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Task{}, t.ID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev silinemedi")
		}

		for _, path := range receiptPaths {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("Fiş dosyası silinemedi: %s: %v", path, err)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
