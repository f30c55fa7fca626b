package project

import (
	"fmt"

	"projetakip-backend/internal/database"
	"projetakip-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/projects/:id/expenditures/export
// Proje gider defterini xlsx olarak indirir.
func ExportExpendituresHandler() fiber.Handler {
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

		f := excelize.NewFile()
		defer f.Close()

		sheet := f.GetSheetName(0)
		headers := []string{"Tarih", "Başlık", "Açıklama", "Tutar"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		total := 0.0
		for i, r := range rows {
			rowNum := i + 2
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), r.Date.Format("2006-01-02"))
			f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), r.Title)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), r.Description)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), r.Amount)
			total += r.Amount
		}

		// Toplam satırı
		totalRow := len(rows) + 2
		f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), "Toplam")
		f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), total)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="proje-%d-giderler.xlsx"`, p.ID))
		return c.Send(buf.Bytes())
	}
}
