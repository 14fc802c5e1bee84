package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

var reportColumns = []string{
	"order_id", "item_name", "quantity", "unit_price", "created_time",
	"gross", "commission", "fixed_fee", "expected", "credited", "delta", "status",
}

var orderColumns = []string{
	"order_id", "item_name", "quantity", "unit_price", "created_time",
	"gross", "commission", "fixed_fee", "expected",
}

// ExportMeta labels an exported report.
type ExportMeta struct {
	ShopName string
	Currency string
	FromDay  string
	ToDay    string
}

// WriteReportCSV writes the report table, one line per row, in table order.
func WriteReportCSV(w io.Writer, report *reconciliation.Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportColumns); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := append(expectedFields(row.ExpectedRecord),
			reconciliation.FormatAmount(row.Credited),
			reconciliation.FormatAmount(row.Delta),
			string(row.Status),
		)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteOrdersCSV writes stored expected records.
func WriteOrdersCSV(w io.Writer, records []reconciliation.ExpectedRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(orderColumns); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(expectedFields(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func expectedFields(record reconciliation.ExpectedRecord) []string {
	return []string{
		record.OrderID,
		record.ItemName,
		strconv.Itoa(record.Quantity),
		reconciliation.FormatAmount(record.UnitPrice),
		record.CreatedTime.UTC().Format(time.RFC3339),
		reconciliation.FormatAmount(record.Gross),
		reconciliation.FormatAmount(record.Commission),
		reconciliation.FormatAmount(record.FixedFee),
		reconciliation.FormatAmount(record.Expected),
	}
}

// BuildReportXLSX renders a summary sheet and a rows sheet.
func BuildReportXLSX(report *reconciliation.Report, meta ExportMeta) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	rowsSheet := "rows"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}

	summary := report.Summary
	lines := [][2]any{
		{"Reconciliation Report", ""},
		{"Shop", meta.ShopName},
		{"Shop ID", report.ShopID},
		{"Period", fmt.Sprintf("%s .. %s", meta.FromDay, meta.ToDay)},
		{"Currency", meta.Currency},
		{"Orders", summary.Orders},
		{"Items", summary.Items},
		{"Gross", amountCell(summary.Gross)},
		{"Expected", amountCell(summary.Expected)},
		{"Credited", amountCell(summary.Credited)},
		{"Delta", amountCell(summary.Delta)},
	}
	for _, status := range reconciliation.Statuses {
		lines = append(lines, [2]any{string(status), summary.StatusCounts[status]})
	}
	for i, line := range lines {
		row := i + 1
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), line[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), line[1])
	}
	_ = f.SetCellStyle(summarySheet, "B8", "B11", money)

	for col, name := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(rowsSheet, cell, name)
	}
	for i, r := range report.Rows {
		row := i + 2
		values := []any{
			r.OrderID,
			r.ItemName,
			r.Quantity,
			amountCell(r.UnitPrice),
			r.CreatedTime.UTC().Format(time.RFC3339),
			amountCell(r.Gross),
			amountCell(r.Commission),
			amountCell(r.FixedFee),
			amountCell(r.Expected),
			amountCell(r.Credited),
			amountCell(r.Delta),
			string(r.Status),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(rowsSheet, cell, value)
		}
	}
	if len(report.Rows) > 0 {
		last := len(report.Rows) + 1
		_ = f.SetCellStyle(rowsSheet, "D2", fmt.Sprintf("D%d", last), money)
		_ = f.SetCellStyle(rowsSheet, "F2", fmt.Sprintf("K%d", last), money)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportPDF renders the summary and the table on A4 landscape.
func BuildReportPDF(report *reconciliation.Report, meta ExportMeta) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	// Core fonts are cp1252; shop aliases and item names arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Reconciliation Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Shop: %s (%d)", meta.ShopName, report.ShopID)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s .. %s", meta.FromDay, meta.ToDay))
	pdf.Ln(5)

	summary := report.Summary
	pdf.Cell(0, 6, fmt.Sprintf("Orders: %d  Items: %d", summary.Orders, summary.Items))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Gross (%s): %s", meta.Currency, reconciliation.FormatAmount(summary.Gross)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Expected (%s): %s", meta.Currency, reconciliation.FormatAmount(summary.Expected)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Credited (%s): %s", meta.Currency, reconciliation.FormatAmount(summary.Credited)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Delta (%s): %s", meta.Currency, reconciliation.FormatAmount(summary.Delta)))
	pdf.Ln(5)
	for _, status := range reconciliation.Statuses {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %d", status, summary.StatusCounts[status]))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	widths := []float64{40, 70, 15, 30, 30, 30, 30, 32}
	headers := []string{"Order", "Item", "Qty", "Gross", "Expected", "Credited", "Delta", "Status"}
	pdf.SetFont("Arial", "B", 9)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 6, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range report.Rows {
		cells := []string{
			row.OrderID,
			truncate(row.ItemName, 40),
			strconv.Itoa(row.Quantity),
			reconciliation.FormatAmount(row.Gross),
			reconciliation.FormatAmount(row.Expected),
			reconciliation.FormatAmount(row.Credited),
			reconciliation.FormatAmount(row.Delta),
			string(row.Status),
		}
		for i, cell := range cells {
			align := "R"
			if i < 2 || i == len(cells)-1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func amountCell(v float64) float64 {
	return reconciliation.RoundAmount(v).InexactFloat64()
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "~"
}
