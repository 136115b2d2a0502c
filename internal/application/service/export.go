package service

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportHeaders is the fixed column order of a period export.
var ExportHeaders = []string{
	"Invoice ID",
	"Date",
	"Customer",
	"Item Names",
	"Brands",
	"Categories",
	"Total Amount",
	"Total Profit",
	"Payment Method",
}

const exportSheet = "Sales"

// ExportRow is one sale flattened for a spreadsheet.
type ExportRow struct {
	InvoiceID     string
	Date          string
	Customer      string
	ItemNames     string
	Brands        string
	Categories    string
	TotalAmount   string
	TotalProfit   string
	PaymentMethod string
}

// NewExportRow flattens sale.
func NewExportRow(sale *entity.Sale) ExportRow {
	names := make([]string, 0, len(sale.Items))
	brands := make([]string, 0, len(sale.Items))
	categories := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		names = append(names, fmt.Sprintf("%s (x%d)", item.Name, item.Quantity))
		brands = append(brands, item.BrandName)
		categories = append(categories, item.Category)
	}

	customer := sale.CustomerName
	if customer == "" {
		customer = "Walk-in"
	}

	return ExportRow{
		InvoiceID:     sale.InvoiceNumber,
		Date:          sale.CreatedAt.Format("2006-01-02 15:04"),
		Customer:      customer,
		ItemNames:     strings.Join(names, " | "),
		Brands:        joinDistinct(brands),
		Categories:    joinDistinct(categories),
		TotalAmount:   sale.TotalAmount.StringFixed(2),
		TotalProfit:   sale.TotalProfit.StringFixed(2),
		PaymentMethod: sale.PaymentMethod.String(),
	}
}

// Fields returns the row in ExportHeaders order.
func (r ExportRow) Fields() []string {
	return []string{
		r.InvoiceID,
		r.Date,
		r.Customer,
		r.ItemNames,
		r.Brands,
		r.Categories,
		r.TotalAmount,
		r.TotalProfit,
		r.PaymentMethod,
	}
}

// joinDistinct keeps the first occurrence of each non-empty value.
func joinDistinct(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return "N/A"
	}
	return strings.Join(out, ", ")
}

// WriteCSV writes a UTF-8 BOM, the header row and rows. Every field is
// quoted and lines end in CRLF so spreadsheet apps open it unchanged.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("\uFEFF"); err != nil {
		return err
	}
	if err := writeQuotedRecord(bw, ExportHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeQuotedRecord(bw, row.Fields()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeQuotedRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(csvSafe(f), `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// csvSafe stops spreadsheet formula injection by prefixing cells that start
// with a formula trigger with a single quote. Plain numbers are left alone.
func csvSafe(s string) string {
	if s == "" {
		return s
	}
	if _, err := decimal.NewFromString(s); err == nil {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// WriteXLSX writes the same table as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]any, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		fields := row.Fields()
		values := make([]any, len(fields))
		for j, v := range fields {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "D", "F", 40); err != nil {
		return err
	}
	return f.Write(w)
}
