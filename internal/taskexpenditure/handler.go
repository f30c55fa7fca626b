package taskexpenditure

import (
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"projetakip-backend/internal/config"
	"projetakip-backend/internal/database"
	"projetakip-backend/internal/models"
	"projetakip-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxReceiptSize = 2 * 1024 * 1024 // 2MB

var allowedReceiptExts = []string{".jpg", ".jpeg", ".png", ".pdf"}

type TaskExpenditureResponse struct {
	ID          uint    `json:"id"`
	TaskID      uint    `json:"task_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	ReceiptPath string  `json:"receipt_path"`
}

func toResponse(e *models.TaskExpenditure) TaskExpenditureResponse {
	return TaskExpenditureResponse{
		ID:          e.ID,
		TaskID:      e.TaskID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.Format("2006-01-02"),
		ReceiptPath: e.ReceiptPath,
	}
}

func taskExists(id uint) bool {
	var n int64
	database.DB.Model(&models.Task{}).Where("id = ?", id).Count(&n)
	return n > 0
}

// formValue multipart form'dan alanı okur; alan hiç gönderilmemişse nil
// döner (kısmi güncelleme için boş string'den ayırt etmek gerekiyor).
func formValue(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

// receiptFile form'daki opsiyonel fiş dosyasını döner, yoksa nil.
func receiptFile(form *multipart.Form) *multipart.FileHeader {
	files, ok := form.File["receipt"]
	if !ok || len(files) == 0 {
		return nil
	}
	return files[0]
}

// saveReceipt dosyayı doğrulayıp üretilen isimle diske yazar. Dosya önce
// yazılır; DB kaydı başarısız olursa çağıran taraf dosyayı siler.
func saveReceipt(c *fiber.Ctx, cfg *config.Config, fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxReceiptSize {
		return "", validation.Errors{"receipt": "receipt en fazla 2MB olabilir"}
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowed := false
	for _, a := range allowedReceiptExts {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", validation.Errors{"receipt": "receipt tipi jpeg, jpg, png veya pdf olmalı"}
	}

	if err := os.MkdirAll(cfg.ReceiptPath, 0755); err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Fiş klasörü oluşturulamadı")
	}

	path := filepath.Join(cfg.ReceiptPath, uuid.NewString()+ext)
	if err := c.SaveFile(fh, path); err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Fiş dosyası kaydedilemedi")
	}
	return path, nil
}

func removeReceipt(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Fiş dosyası silinemedi: %s: %v", path, err)
	}
}

// -------------------------
// Task Expenditure CRUD
// -------------------------

// GET /api/task-expenditures?task_id=...
func ListTaskExpendituresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.TaskExpenditure{})

		if tidStr := c.Query("task_id"); tidStr != "" {
			var tid uint
			if _, err := fmt.Sscan(tidStr, &tid); err != nil || tid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "task_id geçersiz")
			}
			dbq = dbq.Where("task_id = ?", tid)
		}

		var rows []models.TaskExpenditure
		if err := dbq.Order("id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev giderleri listelenemedi")
		}

		res := make([]TaskExpenditureResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/tasks/:id/expenditures
func ListExpendituresByTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t models.Task
		if err := database.DB.First(&t, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		var rows []models.TaskExpenditure
		if err := database.DB.
			Where("task_id = ?", t.ID).
			Order("date desc, id desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev giderleri listelenemedi")
		}

		res := make([]TaskExpenditureResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/task-expenditures  (multipart; opsiyonel receipt dosyası)
func CreateTaskExpenditureHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi (multipart bekleniyor)")
		}

		ve := validation.Errors{}

		var taskID uint
		if v := formValue(form, "task_id"); v == nil || strings.TrimSpace(*v) == "" {
			ve.Add("task_id", "task_id alanı zorunlu")
		} else if n, err := strconv.ParseUint(strings.TrimSpace(*v), 10, 32); err != nil {
			ve.Add("task_id", "task_id geçersiz")
		} else if taskID = uint(n); !taskExists(taskID) {
			ve.Add("task_id", "seçilen task_id mevcut değil")
		}

		var description string
		if v := formValue(form, "description"); v == nil || strings.TrimSpace(*v) == "" {
			ve.Add("description", "description alanı zorunlu")
		} else {
			description = *v
		}

		var amount float64
		if v := formValue(form, "amount"); v == nil || strings.TrimSpace(*v) == "" {
			ve.Add("amount", "amount alanı zorunlu")
		} else if amount, err = strconv.ParseFloat(strings.TrimSpace(*v), 64); err != nil {
			ve.Add("amount", "amount sayısal olmalı")
		} else if amount < 0 {
			ve.Add("amount", "amount 0'dan küçük olamaz")
		}

		var date time.Time
		if v := formValue(form, "date"); v == nil || strings.TrimSpace(*v) == "" {
			ve.Add("date", "date alanı zorunlu")
		} else if date, err = time.Parse("2006-01-02", strings.TrimSpace(*v)); err != nil {
			ve.Add("date", "date formatı 'YYYY-MM-DD' olmalı")
		}

		if ve.Any() {
			return ve
		}

		receiptPath := ""
		if fh := receiptFile(form); fh != nil {
			receiptPath, err = saveReceipt(c, cfg, fh)
			if err != nil {
				return err
			}
		}

		e := models.TaskExpenditure{
			TaskID:      taskID,
			Description: description,
			Amount:      amount,
			Date:        date,
			ReceiptPath: receiptPath,
		}

		if err := database.DB.Create(&e).Error; err != nil {
			// DB kaydı başarısızsa yazılan dosya yetim kalmasın
			removeReceipt(receiptPath)
			return fiber.NewError(fiber.StatusInternalServerError, "Görev gideri kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&e))
	}
}

// GET /api/task-expenditures/:id
func GetTaskExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.TaskExpenditure
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev gideri bulunamadı")
		}
		return c.JSON(toResponse(&e))
	}
}

// PUT /api/task-expenditures/:id  (multipart; receipt gönderilirse eski
// dosya değişimden sonra silinir)
func UpdateTaskExpenditureHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.TaskExpenditure
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev gideri bulunamadı")
		}

		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi (multipart bekleniyor)")
		}

		ve := validation.Errors{}

		if v := formValue(form, "description"); v != nil {
			if strings.TrimSpace(*v) == "" {
				ve.Add("description", "description boş olamaz")
			} else {
				e.Description = *v
			}
		}

		if v := formValue(form, "amount"); v != nil {
			amount, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
			if err != nil {
				ve.Add("amount", "amount sayısal olmalı")
			} else if amount < 0 {
				ve.Add("amount", "amount 0'dan küçük olamaz")
			} else {
				e.Amount = amount
			}
		}

		if v := formValue(form, "date"); v != nil {
			if d, err := time.Parse("2006-01-02", strings.TrimSpace(*v)); err != nil {
				ve.Add("date", "date formatı 'YYYY-MM-DD' olmalı")
			} else {
				e.Date = d
			}
		}

		if ve.Any() {
			return ve
		}

		oldReceipt := ""
		newReceipt := ""
		if fh := receiptFile(form); fh != nil {
			newReceipt, err = saveReceipt(c, cfg, fh)
			if err != nil {
				return err
			}
			oldReceipt = e.ReceiptPath
			e.ReceiptPath = newReceipt
		}

		if err := database.DB.Save(&e).Error; err != nil {
			removeReceipt(newReceipt)
			return fiber.NewError(fiber.StatusInternalServerError, "Görev gideri güncellenemedi")
		}

		// Yeni fiş kaydedildi, eskisi artık referanssız
		removeReceipt(oldReceipt)

		return c.JSON(toResponse(&e))
	}
}

// DELETE /api/task-expenditures/:id
// Önce satır silinir, fiş dosyası commit sonrası temizlenir.
func DeleteTaskExpenditureHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.TaskExpenditure
		if err := database.DB.First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev gideri bulunamadı")
		}

		if err := database.DB.Delete(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev gideri silinemedi")
		}

		removeReceipt(e.ReceiptPath)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
