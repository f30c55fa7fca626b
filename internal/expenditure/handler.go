package expenditure

import (
	"strings"
	"time"

	"projetakip-backend/internal/database"
	"projetakip-backend/internal/models"
	"projetakip-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenditureRequest struct {
	ProjectID   *uint    `json:"project_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Date        string   `json:"date"` // "2025-12-09"
	Receipt     string   `json:"receipt"`
}

type UpdateExpenditureRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Date        *string  `json:"date"`
	Receipt     *string  `json:"receipt"`
}

type ExpenditureResponse struct {
	ID          uint    `json:"id"`
	ProjectID   uint    `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Receipt     string  `json:"receipt"`
}

func toResponse(e *models.Expenditure) ExpenditureResponse {
	return ExpenditureResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.Format("2006-01-02"),
		Receipt:     e.Receipt,
	}
}

func projectExists(id uint) bool {
	var n int64
	database.DB.Model(&models.Project{}).Where("id = ?", id).Count(&n)
	return n > 0
}

// -------------------------
// Proje gider defteri CRUD
// -------------------------

// GET /api/expenditures
func ListExpendituresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Expenditure
		if err := database.DB.Order("id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		res := make([]ExpenditureResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/projects/:id/expenditures
func ListExpendituresByProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		var rows []models.Expenditure
		if err := database.DB.
			Where("project_id = ?", p.ID).
			Order("date asc, id asc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		res := make([]ExpenditureResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/expenditures
func CreateExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenditureRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		ve := validation.Errors{}

		if body.ProjectID == nil {
			ve.Add("project_id", "project_id alanı zorunlu")
		} else if !projectExists(*body.ProjectID) {
			ve.Add("project_id", "seçilen project_id mevcut değil")
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" {
			ve.Add("title", "title alanı zorunlu")
		}

		if body.Amount == nil {
			ve.Add("amount", "amount alanı zorunlu")
		} else if *body.Amount < 0 {
			ve.Add("amount", "amount 0'dan küçük olamaz")
		}

		var date time.Time
		var err error
		if body.Date == "" {
			ve.Add("date", "date alanı zorunlu")
		} else if date, err = time.Parse("2006-01-02", body.Date); err != nil {
			ve.Add("date", "date formatı 'YYYY-MM-DD' olmalı")
		}

		if ve.Any() {
			return ve
		}

		e := models.Expenditure{
			ProjectID:   *body.ProjectID,
			Title:       body.Title,
			Description: body.Description,
			Amount:      *body.Amount,
			Date:        date,
			Receipt:     body.Receipt,
		}

		if err := database.DB.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&e))
	}
}

// GET /api/expenditures/:id
func GetExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.Expenditure
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}
		return c.JSON(toResponse(&e))
	}
}

// PUT /api/expenditures/:id
func UpdateExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.Expenditure
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		var body UpdateExpenditureRequest
		if err := validation.BindStrict(c, &body); err != nil {
			return err
		}

		ve := validation.Errors{}

		if body.Title != nil {
			title := strings.TrimSpace(*body.Title)
			if title == "" {
				ve.Add("title", "title boş olamaz")
			} else {
				e.Title = title
			}
		}

		if body.Description != nil {
			e.Description = *body.Description
		}

		if body.Amount != nil {
			if *body.Amount < 0 {
				ve.Add("amount", "amount 0'dan küçük olamaz")
			} else {
				e.Amount = *body.Amount
			}
		}

		if body.Date != nil {
			if d, err := time.Parse("2006-01-02", *body.Date); err != nil {
				ve.Add("date", "date formatı 'YYYY-MM-DD' olmalı")
			} else {
				e.Date = d
			}
		}

		if body.Receipt != nil {
			e.Receipt = *body.Receipt
		}

		if ve.Any() {
			return ve
		}

		if err := database.DB.Save(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider güncellenemedi")
		}

		return c.JSON(toResponse(&e))
	}
}

// DELETE /api/expenditures/:id
func DeleteExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.Expenditure
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		if err := database.DB.Delete(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
