package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Errors alan -> mesaj eşlemesi. Handler'lardan error olarak döndürülür,
// merkezi ErrorHandler 422 + {"errors": {...}} olarak cevaplar.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "doğrulama hatası: " + strings.Join(fields, ", ")
}

func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) Any() bool { return len(e) > 0 }

// ErrorHandler fiber app'in merkezi hata yakalayıcısı.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ve Errors
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": ve,
		})
	}
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
		})
	}
	log.Println("Beklenmeyen hata:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Beklenmeyen sunucu hatası",
	})
}

// BindStrict JSON gövdeyi struct'a çözer. Fiber'ın BodyParser'ından farklı
// olarak tanımsız alanları sessizce yutmaz, alan adıyla reddeder.
func BindStrict(c *fiber.Ctx, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if field, ok := unknownField(err); ok {
			return Errors{field: "bilinmeyen alan"}
		}
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
	}
	return nil
}

// encoding/json bilinmeyen alan için tiplenmiş bir hata vermiyor,
// mesajdan ayıklamak gerekiyor.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}
