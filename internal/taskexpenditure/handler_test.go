package taskexpenditure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"projetakip-backend/internal/config"
	"projetakip-backend/internal/database"
	"projetakip-backend/internal/models"
	"projetakip-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: validation.ErrorHandler})
	app.Get("/api/task-expenditures", ListTaskExpendituresHandler())
	app.Post("/api/task-expenditures", CreateTaskExpenditureHandler(cfg))
	app.Get("/api/task-expenditures/:id", GetTaskExpenditureHandler())
	app.Put("/api/task-expenditures/:id", UpdateTaskExpenditureHandler(cfg))
	app.Delete("/api/task-expenditures/:id", DeleteTaskExpenditureHandler())
	app.Get("/api/tasks/:id/expenditures", ListExpendituresByTaskHandler())
	return app
}

// multipartBody alanları ve opsiyonel fiş dosyasını tek gövdede toplar.
func multipartBody(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("form alanı yazılamadı: %v", err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("receipt", fileName)
		if err != nil {
			t.Fatalf("form dosyası oluşturulamadı: %v", err)
		}
		if _, err := fw.Write(fileContent); err != nil {
			t.Fatalf("form dosyası yazılamadı: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart kapatılamadı: %v", err)
	}
	return buf, w.FormDataContentType()
}

func doMultipart(t *testing.T, app *fiber.App, method, url string, fields map[string]string, fileName string, fileContent []byte) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, fileName, fileContent)
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("cevap çözümlenemedi: %v", err)
	}
}

func fieldErrors(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, resp, &body)
	return body.Errors
}

func createTask(t *testing.T) models.Task {
	t.Helper()
	u := models.User{Name: "test", Email: "test@example.com", PasswordHash: "x"}
	if err := database.DB.Create(&u).Error; err != nil {
		t.Fatalf("kullanıcı oluşturulamadı: %v", err)
	}
	p := models.Project{
		Name:      "Proje",
		UserID:    u.ID,
		Budget:    1000,
		Status:    models.ProjectStatusInProgress,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := database.DB.Create(&p).Error; err != nil {
		t.Fatalf("proje oluşturulamadı: %v", err)
	}
	task := models.Task{ProjectID: p.ID, Title: "Görev", Status: models.TaskStatusToDo, Priority: models.TaskPriorityLow}
	if err := database.DB.Create(&task).Error; err != nil {
		t.Fatalf("görev oluşturulamadı: %v", err)
	}
	return task
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{ReceiptPath: t.TempDir()}
}

func TestCreateTaskExpenditureWithReceipt(t *testing.T) {
	setupTestDB(t)
	task := createTask(t)
	cfg := testConfig(t)
	app := newApp(cfg)

	fields := map[string]string{
		"task_id":     fmt.Sprint(task.ID),
		"description": "Yazıcı kağıdı",
		"amount":      "149.90",
		"date":        "2025-03-10",
	}
	resp := doMultipart(t, app, http.MethodPost, "/api/task-expenditures", fields, "fis.png", []byte("png verisi"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d, beklenen 201", resp.StatusCode)
	}
	var res TaskExpenditureResponse
	decodeBody(t, resp, &res)
	if res.ReceiptPath == "" {
		t.Fatal("receipt_path boş döndü")
	}
	if filepath.Dir(res.ReceiptPath) != cfg.ReceiptPath {
		t.Errorf("fiş yanlış klasöre yazıldı: %s", res.ReceiptPath)
	}
	if filepath.Ext(res.ReceiptPath) != ".png" {
		t.Errorf("fiş uzantısı korunmadı: %s", res.ReceiptPath)
	}
	if _, err := os.Stat(res.ReceiptPath); err != nil {
		t.Errorf("fiş dosyası diskte yok: %v", err)
	}
}

func TestCreateTaskExpenditureValidation(t *testing.T) {
	setupTestDB(t)
	task := createTask(t)
	cfg := testConfig(t)
	app := newApp(cfg)

	// Negatif tutar
	resp := doMultipart(t, app, http.MethodPost, "/api/task-expenditures", map[string]string{
		"task_id":     fmt.Sprint(task.ID),
		"description": "x",
		"amount":      "-5",
		"date":        "2025-03-10",
	}, "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, beklenen 422", resp.StatusCode)
	}
	if errs := fieldErrors(t, resp); errs["amount"] == "" {
		t.Errorf("amount hatası bekleniyordu, gelen: %v", errs)
	}

	// Olmayan görev
	resp = doMultipart(t, app, http.MethodPost, "/api/task-expenditures", map[string]string{
		"task_id":     "9999",
		"description": "x",
		"amount":      "5",
		"date":        "2025-03-10",
	}, "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, beklenen 422", resp.StatusCode)
	}
	if errs := fieldErrors(t, resp); errs["task_id"] == "" {
		t.Errorf("task_id hatası bekleniyordu, gelen: %v", errs)
	}
}

func TestCreateTaskExpenditureBadExtension(t *testing.T) {
	setupTestDB(t)
	task := createTask(t)
	cfg := testConfig(t)
	app := newApp(cfg)

	resp := doMultipart(t, app, http.MethodPost, "/api/task-expenditures", map[string]string{
		"task_id":     fmt.Sprint(task.ID),
		"description": "x",
		"amount":      "5",
		"date":        "2025-03-10",
	}, "virus.exe", []byte("mz"))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, beklenen 422", resp.StatusCode)
	}
	if errs := fieldErrors(t, resp); errs["receipt"] == "" {
		t.Errorf("receipt hatası bekleniyordu, gelen: %v", errs)
	}

	// Geçersiz dosya diske yazılmamalı
	entries, err := os.ReadDir(cfg.ReceiptPath)
	if err == nil && len(entries) != 0 {
		t.Errorf("fiş klasöründe %d beklenmeyen dosya var", len(entries))
	}
}

func TestCreateTaskExpenditureOversizedReceipt(t *testing.T) {
	setupTestDB(t)
	task := createTask(t)
	cfg := testConfig(t)
	app := newApp(cfg)

	big := bytes.Repeat([]byte("a"), maxReceiptSize+1)
	resp := doMultipart(t, app, http.MethodPost, "/api/task-expenditures", map[string]string{
		"task_id":     fmt.Sprint(task.ID),
		"description": "x",
		"amount":      "5",
		"date":        "2025-03-10",
	}, "fis.jpg", big)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, beklenen 422", resp.StatusCode)
	}
	if errs := fieldErrors(t, resp); errs["receipt"] == "" {
		t.Errorf("receipt hatası bekleniyordu, gelen: %v", errs)
	}
}

func TestUpdateTaskExpenditureReplacesReceipt(t *testing.T) {
	setupTestDB(t)
	task := createTask(t)
	cfg := testConfig(t)
	app := newApp(cfg)

	oldPath := filepath.Join(cfg.ReceiptPath, "eski.jpg")
	if err := os.WriteFile(oldPath, []byte("eski"), 0644); err != nil {
		t.Fatalf("eski fiş yazılamadı: %v", err)
	}
	e := models.TaskExpenditure{TaskID: task.ID, Description: "x", Amount: 10, Date: time.Now(), ReceiptPath: oldPath}
	if err := database.DB.Create(&e).Error; err != nil {
		t.Fatalf("gider oluşturulamadı: %v", err)
	}

	resp := doMultipart(t, app, http.MethodPut, fmt.Sprintf("/api/task-expenditures/%d", e.ID), map[string]string{
		"amount": "25.50",
	}, "yeni.pdf", []byte("pdf"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, beklenen 200", resp.StatusCode)
	}
	var res TaskExpenditureResponse
	decodeBody(t, resp, &res)
	if res.Amount != 25.50 {
		t.Errorf("amount=%v, beklenen 25.50", res.Amount)
	}
	if res.ReceiptPath == oldPath || res.ReceiptPath == "" {
		t.Fatalf("fiş değişmedi: %s", res.ReceiptPath)
	}
	if _, err := os.Stat(res.ReceiptPath); err != nil {
		t.Errorf("yeni fiş diskte yok: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("eski fiş silinmedi: %s", oldPath)
	}

	// Değişmeyen alanlar korunur
	if res.Description != "x" {
		t.Errorf("description=%q, beklenen 'x'", res.Description)
	}
}

func TestDeleteTaskExpenditure(t *testing.T) {
	setupTestDB(t)
	task := createTask(t)
	cfg := testConfig(t)
	app := newApp(cfg)

	receipt := filepath.Join(cfg.ReceiptPath, "fis.jpg")
	if err := os.WriteFile(receipt, []byte("fis"), 0644); err != nil {
		t.Fatalf("fiş yazılamadı: %v", err)
	}
	withFile := models.TaskExpenditure{TaskID: task.ID, Description: "a", Amount: 1, Date: time.Now(), ReceiptPath: receipt}
	without := models.TaskExpenditure{TaskID: task.ID, Description: "b", Amount: 2, Date: time.Now()}
	for _, e := range []*models.TaskExpenditure{&withFile, &without} {
		if err := database.DB.Create(e).Error; err != nil {
			t.Fatalf("gider oluşturulamadı: %v", err)
		}
	}

	resp := doMultipart(t, app, http.MethodDelete, fmt.Sprintf("/api/task-expenditures/%d", withFile.ID), nil, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status=%d, beklenen 204", resp.StatusCode)
	}
	if _, err := os.Stat(receipt); !os.IsNotExist(err) {
		t.Errorf("fiş dosyası silinmedi: %s", receipt)
	}

	// Fişsiz kayıt da sorunsuz silinir
	resp = doMultipart(t, app, http.MethodDelete, fmt.Sprintf("/api/task-expenditures/%d", without.ID), nil, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status=%d, beklenen 204", resp.StatusCode)
	}

	var n int64
	database.DB.Model(&models.TaskExpenditure{}).Count(&n)
	if n != 0 {
		t.Errorf("gider sayısı=%d, beklenen 0", n)
	}
}

func TestListExpendituresByTask(t *testing.T) {
	setupTestDB(t)
	task := createTask(t)
	cfg := testConfig(t)
	app := newApp(cfg)

	for i, d := range []string{"2025-01-05", "2025-03-01", "2025-02-10"} {
		date, _ := time.Parse("2006-01-02", d)
		e := models.TaskExpenditure{TaskID: task.ID, Description: fmt.Sprintf("g%d", i), Amount: 1, Date: date}
		if err := database.DB.Create(&e).Error; err != nil {
			t.Fatalf("gider oluşturulamadı: %v", err)
		}
	}

	resp := doMultipart(t, app, http.MethodGet, fmt.Sprintf("/api/tasks/%d/expenditures", task.ID), nil, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, beklenen 200", resp.StatusCode)
	}
	var res []TaskExpenditureResponse
	decodeBody(t, resp, &res)
	if len(res) != 3 {
		t.Fatalf("kayıt sayısı=%d, beklenen 3", len(res))
	}
	// Tarihe göre azalan sıralama
	if res[0].Date != "2025-03-01" || res[2].Date != "2025-01-05" {
		t.Errorf("sıralama beklenmedik: %s, %s, %s", res[0].Date, res[1].Date, res[2].Date)
	}

	resp = doMultipart(t, app, http.MethodGet, "/api/tasks/9999/expenditures", nil, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d, beklenen 404", resp.StatusCode)
	}
}
