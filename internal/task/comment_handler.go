package task

import (
	"fmt"
	"strings"

	"projetakip-backend/internal/database"
	"projetakip-backend/internal/models"
	"projetakip-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateTaskCommentRequest struct {
	TaskID  *uint  `json:"task_id"`
	UserID  *uint  `json:"user_id"`
	Content string `json:"content"`
}

type UpdateTaskCommentRequest struct {
	Content *string `json:"content"`
}

type TaskCommentResponse struct {
	ID        uint   `json:"id"`
	TaskID    uint   `json:"task_id"`
	UserID    uint   `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func commentToResponse(tc *models.TaskComment) TaskCommentResponse {
	return TaskCommentResponse{
		ID:        tc.ID,
		TaskID:    tc.TaskID,
		UserID:    tc.UserID,
		UserName:  tc.User.Name,
		Content:   tc.Content,
		CreatedAt: tc.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func taskExists(id uint) bool {
	var n int64
	database.DB.Model(&models.Task{}).Where("id = ?", id).Count(&n)
	return n > 0
}

// -------------------------
// Task Comment CRUD
// -------------------------

// GET /api/task-comments?task_id=...
func ListTaskCommentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.TaskComment{}).Preload("User")

		if tidStr := c.Query("task_id"); tidStr != "" {
			var tid uint
			if _, err := fmt.Sscan(tidStr, &tid); err != nil || tid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "task_id geçersiz")
			}
			dbq = dbq.Where("task_id = ?", tid)
		}

		var comments []models.TaskComment
		if err := dbq.Order("id asc").Find(&comments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yorumlar listelenemedi")
		}

		res := make([]TaskCommentResponse, 0, len(comments))
		for i := range comments {
			res = append(res, commentToResponse(&comments[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/tasks/:id/comments
func ListCommentsByTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t models.Task
		if err := database.DB.First(&t, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		var comments []models.TaskComment
		if err := database.DB.Preload("User").
			Where("task_id = ?", t.ID).
			Order("id asc").
			Find(&comments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yorumlar listelenemedi")
		}

		res := make([]TaskCommentResponse, 0, len(comments))
		for i := range comments {
			res = append(res, commentToResponse(&comments[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/task-comments
func CreateTaskCommentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTaskCommentRequest
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

		if strings.TrimSpace(body.Content) == "" {
			ve.Add("content", "content alanı zorunlu")
		}

		if ve.Any() {
			return ve
		}

		tc := models.TaskComment{
			TaskID:  *body.TaskID,
			UserID:  *body.UserID,
			Content: body.Content,
		}

		if err := database.DB.Create(&tc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yorum oluşturulamadı")
		}

		database.DB.Preload("User").First(&tc, tc.ID)
		return c.Status(fiber.StatusCreated).JSON(commentToResponse(&tc))
	}
}

// GET /api/task-comments/:id
func GetTaskCommentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tc models.TaskComment
		if err := database.DB.Preload("User").First(&tc, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yorum bulunamadı")
		}
		return c.JSON(commentToResponse(&tc))
	}
}

// PUT /api/task-comments/:id
func UpdateTaskCommentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tc models.TaskComment
		if err := database.DB.First(&tc, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yorum bulunamadı")
		}

		var body UpdateTaskCommentRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		if body.Content != nil {
			if strings.TrimSpace(*body.Content) == "" {
				return validation.Errors{"content": "content boş olamaz"}
			}
			tc.Content = *body.Content
		}

		if err := database.DB.Save(&tc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yorum güncellenemedi")
		}

		database.DB.Preload("User").First(&tc, tc.ID)
		return c.JSON(commentToResponse(&tc))
	}
}

// DELETE /api/task-comments/:id
func DeleteTaskCommentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tc models.TaskComment
		if err := database.DB.First(&tc, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yorum bulunamadı")
		}

		if err := database.DB.Delete(&tc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yorum silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
