package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	SheetName   = "商品統計"
	FileName    = "product_stats.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var Header = []string{"商品名", "いいね数", "販売数"}

// WriteProductStats writes one row per product: name, likes, total sold.
func WriteProductStats(w io.Writer, stats []models.SalesStat) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range Header {
		headerRow.AddCell().SetString(h)
	}

	for _, s := range stats {
		row := sheet.AddRow()
		row.AddCell().SetString(s.Name)
		row.AddCell().SetInt64(s.Likes)
		row.AddCell().SetInt64(s.TotalSold)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
