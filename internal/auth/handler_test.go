package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"projetakip-backend/internal/config"
	"projetakip-backend/internal/database"
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

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret-en-az-otuz-iki-karakter!!"}
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: validation.ErrorHandler})
	app.Post("/api/register", RegisterHandler(cfg))
	app.Post("/api/login", LoginHandler(cfg))

	protected := app.Group("/api", JWTMiddleware(cfg))
	protected.Post("/logout", LogoutHandler())
	protected.Get("/user", MeHandler())
	protected.Get("/users", ListUsersHandler())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
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

type authResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func register(t *testing.T, app *fiber.App, name, email, password string) authResponse {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status=%d, beklenen 201", resp.StatusCode)
	}
	var res authResponse
	decodeBody(t, resp, &res)
	return res
}

func TestRegisterLoginMe(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	app := newApp(cfg)

	reg := register(t, app, "Ayşe", "ayse@example.com", "cokgizli123")
	if reg.Token == "" {
		t.Fatal("register token boş")
	}
	if reg.User.Email != "ayse@example.com" {
		t.Errorf("email=%q", reg.User.Email)
	}

	resp := doJSON(t, app, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "AYSE@example.com", // email küçük harfe çevrilir
		"password": "cokgizli123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d, beklenen 200", resp.StatusCode)
	}
	var login authResponse
	decodeBody(t, resp, &login)
	if login.Token == "" {
		t.Fatal("login token boş")
	}

	resp = doJSON(t, app, http.MethodGet, "/api/user", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status=%d, beklenen 200", resp.StatusCode)
	}
	var me UserResponse
	decodeBody(t, resp, &me)
	if me.ID != reg.User.ID || me.Name != "Ayşe" {
		t.Errorf("me beklenmedik: %+v", me)
	}
}

func TestRegisterValidation(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	app := newApp(cfg)

	resp := doJSON(t, app, http.MethodPost, "/api/register", "", map[string]any{
		"name":     "",
		"email":    "a@example.com",
		"password": "kisa",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, beklenen 422", resp.StatusCode)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, resp, &body)
	if body.Errors["name"] == "" || body.Errors["password"] == "" {
		t.Errorf("name ve password hataları bekleniyordu, gelen: %v", body.Errors)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	app := newApp(cfg)

	register(t, app, "Ali", "ali@example.com", "cokgizli123")

	resp := doJSON(t, app, http.MethodPost, "/api/register", "", map[string]any{
		"name":     "Ali 2",
		"email":    "ali@example.com",
		"password": "cokgizli123",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, beklenen 422", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	app := newApp(cfg)

	register(t, app, "Ali", "ali@example.com", "cokgizli123")

	resp := doJSON(t, app, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "ali@example.com",
		"password": "yanlis-sifre",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d, beklenen 401", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	app := newApp(cfg)

	resp := doJSON(t, app, http.MethodGet, "/api/user", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("tokensiz status=%d, beklenen 401", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/user", "bozuk.token.degeri", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bozuk token status=%d, beklenen 401", resp.StatusCode)
	}

	// Farklı secret ile imzalanmış token da reddedilir
	otherCfg := &config.Config{JWTSecret: "baska-secret-en-az-otuz-iki-karakter!"}
	otherApp := newApp(otherCfg)
	reg := register(t, otherApp, "Veli", "veli@example.com", "cokgizli123")

	resp = doJSON(t, app, http.MethodGet, "/api/user", reg.Token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("yabancı token status=%d, beklenen 401", resp.StatusCode)
	}
}

func TestListUsers(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	app := newApp(cfg)

	register(t, app, "Zeynep", "zeynep@example.com", "cokgizli123")
	me := register(t, app, "Ahmet", "ahmet@example.com", "cokgizli123")

	resp := doJSON(t, app, http.MethodGet, "/api/users", me.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, beklenen 200", resp.StatusCode)
	}
	var users []UserSummary
	decodeBody(t, resp, &users)
	if len(users) != 2 {
		t.Fatalf("kullanıcı sayısı=%d, beklenen 2", len(users))
	}
	// name asc sıralama
	if users[0].Name != "Ahmet" || users[1].Name != "Zeynep" {
		t.Errorf("sıralama beklenmedik: %+v", users)
	}
}

func TestLogout(t *testing.T) {
	setupTestDB(t)
	cfg := testConfig()
	app := newApp(cfg)

	reg := register(t, app, "Ali", "ali@example.com", "cokgizli123")

	resp := doJSON(t, app, http.MethodPost, "/api/logout", reg.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, beklenen 200", resp.StatusCode)
	}
}
