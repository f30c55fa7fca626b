package timeentry

import (
	"fmt"
	"time"

	"projetakip-backend/internal/database"
	"projetakip-backend/internal/models"
	"projetakip-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateTimeEntryRequest struct {
	TaskID      *uint    `json:"task_id"`
	UserID      *uint    `json:"user_id"`
	StartTime   string   `json:"start_time"` // "2025-01-01 09:00:00" veya RFC3339
	EndTime     *string  `json:"end_time"`
	Hours       *float64 `json:"hours"`
	Description string   `json:"description"`
}

type UpdateTimeEntryRequest struct {
	TaskID      *uint    `json:"task_id"`
	UserID      *uint    `json:"user_id"`
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
	Hours       *float64 `json:"hours"`
	Description *string  `json:"description"`
}

type TimeEntryResponse struct {
	ID          uint    `json:"id"`
	TaskID      uint    `json:"task_id"`
	TaskTitle   string  `json:"task_title"`
	UserID      uint    `json:"user_id"`
	UserName    string  `json:"user_name"`
	StartTime   string  `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

func toResponse(e *models.TimeEntry) TimeEntryResponse {
	res := TimeEntryResponse{
		ID:          e.ID,
		TaskID:      e.TaskID,
		TaskTitle:   e.Task.Title,
		UserID:      e.UserID,
		UserName:    e.User.Name,
		StartTime:   e.StartTime.Format("2006-01-02 15:04:05"),
		Hours:       e.Hours,
		Description: e.Description,
	}
	if e.EndTime != nil {
		s := e.EndTime.Format("2006-01-02 15:04:05")
		res.EndTime = &s
	}
	return res
}

func taskExists(id uint) bool {
	var n int64
	database.DB.Model(&models.Task{}).Where("id = ?", id).Count(&n)
	return n > 0
}

func userExists(id uint) bool {
	var n int64
	database.DB.Model(&models.User{}).Where("id = ?", id).Count(&n)
	return n > 0
}

// parseDateTime birkaç yaygın formatı dener; frontend datetime-local ve
// ISO string gönderiyor.
func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("tarih çözümlenemedi: %s", s)
}

// -------------------------
// Time Entry CRUD
// -------------------------

// GET /api/time-entries?task_id=...&user_id=...
func ListTimeEntriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.TimeEntry{}).Preload("Task").Preload("User")

		if tidStr := c.Query("task_id"); tidStr != "" {
			var tid uint
			if _, err := fmt.Sscan(tidStr, &tid); err != nil || tid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "task_id geçersiz")
			}
			dbq = dbq.Where("task_id = ?", tid)
		}

		if uidStr := c.Query("user_id"); uidStr != "" {
			var uid uint
			if _, err := fmt.Sscan(uidStr, &uid); err != nil || uid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "user_id geçersiz")
			}
			dbq = dbq.Where("user_id = ?", uid)
		}

		var rows []models.TimeEntry
		if err := dbq.Order("id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zaman kayıtları listelenemedi")
		}

		res := make([]TimeEntryResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/tasks/:id/time-entries
func ListTimeEntriesByTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t models.Task
		if err := database.DB.First(&t, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		var rows []models.TimeEntry
		if err := database.DB.Preload("Task").Preload("User").
			Where("task_id = ?", t.ID).
			Order("id asc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zaman kayıtları listelenemedi")
		}

		res := make([]TimeEntryResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/time-entries
func CreateTimeEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTimeEntryRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		ve := validation.Errors{}

		if body.TaskID == nil {
			ve.Add("task_id", "task_id alanı zorunlu")
		} else if !taskExists(*body.TaskID) {
			ve.Add("task_id", "seçilen task_id mevcut değil")
		}

		if body.UserID == nil {
			ve.Add("user_id", "user_id alanı zorunlu")
		} else if !userExists(*body.UserID) {
			ve.Add("user_id", "seçilen user_id mevcut değil")
		}

		var startTime time.Time
		var endTime *time.Time
		var err error

		if body.StartTime == "" {
			ve.Add("start_time", "start_time alanı zorunlu")
		} else if startTime, err = parseDateTime(body.StartTime); err != nil {
			ve.Add("start_time", "start_time geçersiz")
		}

		if body.EndTime != nil {
			if d, err := parseDateTime(*body.EndTime); err != nil {
				ve.Add("end_time", "end_time geçersiz")
			} else {
				endTime = &d
			}
		}

		if _, ok := ve["start_time"]; !ok && endTime != nil && !endTime.After(startTime) {
			ve.Add("end_time", "end_time start_time'dan sonra olmalı")
		}

		if body.Hours == nil {
			ve.Add("hours", "hours alanı zorunlu")
		} else if *body.Hours < 0 {
			ve.Add("hours", "hours 0'dan küçük olamaz")
		}

		if ve.Any() {
			return ve
		}

		e := models.TimeEntry{
			TaskID:      *body.TaskID,
			UserID:      *body.UserID,
			StartTime:   startTime,
			EndTime:     endTime,
			Hours:       *body.Hours,
			Description: body.Description,
		}

		if err := database.DB.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zaman kaydı oluşturulamadı")
		}

		database.DB.Preload("Task").Preload("User").First(&e, e.ID)
		return c.Status(fiber.StatusCreated).JSON(toResponse(&e))
	}
}

// GET /api/time-entries/:id
func GetTimeEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.TimeEntry
		if err := database.DB.Preload("Task").Preload("User").
			First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Zaman kaydı bulunamadı")
		}
		return c.JSON(toResponse(&e))
	}
}

// PUT /api/time-entries/:id
func UpdateTimeEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.TimeEntry
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Zaman kaydı bulunamadı")
		}

		var body UpdateTimeEntryRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		ve := validation.Errors{}

		if body.TaskID != nil {
			if !taskExists(*body.TaskID) {
				ve.Add("task_id", "seçilen task_id mevcut değil")
			} else {
				e.TaskID = *body.TaskID
			}
		}

		if body.UserID != nil {
			if !userExists(*body.UserID) {
				ve.Add("user_id", "seçilen user_id mevcut değil")
			} else {
				e.UserID = *body.UserID
			}
		}

		if body.StartTime != nil {
			if d, err := parseDateTime(*body.StartTime); err != nil {
				ve.Add("start_time", "start_time geçersiz")
			} else {
				e.StartTime = d
			}
		}

		if body.EndTime != nil {
			if d, err := parseDateTime(*body.EndTime); err != nil {
				ve.Add("end_time", "end_time geçersiz")
			} else {
				e.EndTime = &d
			}
		}

		if body.Hours != nil {
			if *body.Hours < 0 {
				ve.Add("hours", "hours 0'dan küçük olamaz")
			} else {
				e.Hours = *body.Hours
			}
		}

		if body.Description != nil {
			e.Description = *body.Description
		}

		// Sıralama güncel (birleştirilmiş) değerler üzerinden kontrol edilir
		if !ve.Any() && e.EndTime != nil && !e.EndTime.After(e.StartTime) {
			ve.Add("end_time", "end_time start_time'dan sonra olmalı")
		}

		if ve.Any() {
			return ve
		}

		if err := database.DB.Save(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zaman kaydı güncellenemedi")
		}

		database.DB.Preload("Task").Preload("User").First(&e, e.ID)
		return c.JSON(toResponse(&e))
	}
}

// DELETE /api/time-entries/:id
func DeleteTimeEntryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.TimeEntry
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Zaman kaydı bulunamadı")
		}

		if err := database.DB.Delete(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Zaman kaydı silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
