package export

import (
	"fmt"
	"io"

	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/email"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName        = "Inquiries"
	XLSXContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultColWidth  = 24
	commodityColWide = 48
)

// InquiryHeaders returns the column titles in the order WriteInquiries fills them.
// label maps a field's label key to display text.
func InquiryHeaders(label func(key string) string) []string {
	headers := []string{"#", label("export.dispatchedAt")}
	for _, f := range domain.RequiredFields {
		headers = append(headers, label(f.LabelKey()))
	}
	return append(headers, label("export.language"))
}

// WriteInquiries renders archived inquiries as a single-sheet workbook
func WriteInquiries(w io.Writer, headers []string, items []domain.ArchivedInquiry) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(SheetName, cell, header); err != nil {
			return err
		}
	}

	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E0E0E0"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := file.SetCellStyle(SheetName, "A1", endCell, style); err != nil {
		return err
	}

	for r, item := range items {
		row := []any{item.ID, item.DispatchedAt.Format(email.DateLayout)}
		for _, f := range domain.RequiredFields {
			row = append(row, item.Inquiry.Value(f))
		}
		row = append(row, item.Lang)

		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := file.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = file.SetColWidth(SheetName, "B", last, defaultColWidth)
	commodityCol, _ := excelize.ColumnNumberToName(2 + len(domain.RequiredFields))
	_ = file.SetColWidth(SheetName, commodityCol, commodityCol, commodityColWide)

	_ = file.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	_, err = file.WriteTo(w)
	return err
}
