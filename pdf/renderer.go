// Package pdf renders invoice documents. The renderer is pure: the same
// invoice, lines and client always produce the same layout.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/yourusername/billing/models"
)

var hundred = decimal.NewFromInt(100)

// clip shortens s to at most max runes, never splitting a multi-byte
// character.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces an A4 invoice document: header with number and dates, the
// buyer block, a line table and the net/VAT/gross summary.
func (r *Renderer) Render(invoice *models.Invoice, lines []models.InvoiceLine, client *models.Client) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	// pin both embedded timestamps so rendering stays deterministic
	doc.SetCreationDate(invoice.IssuedDate)
	doc.SetModificationDate(invoice.IssuedDate)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 8, "INVOICE")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 5, "No: "+invoice.Number)
	doc.Ln(5)
	doc.Cell(0, 5, "Issued: "+invoice.IssuedDate.Format("2006-01-02"))
	doc.Ln(5)
	doc.Cell(0, 5, "Due: "+invoice.DueDate.Format("2006-01-02"))
	doc.Ln(5)
	doc.Cell(0, 5, fmt.Sprintf("Period: %s - %s",
		invoice.PeriodFrom.Format("2006-01-02"), invoice.PeriodTo.Format("2006-01-02")))
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 11)
	doc.Cell(0, 6, "Buyer:")
	doc.Ln(6)
	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 5, client.Name)
	doc.Ln(5)
	if client.CompanyCode != "" {
		doc.Cell(0, 5, "Company code: "+client.CompanyCode)
		doc.Ln(5)
	}
	if client.VATCode != "" {
		doc.Cell(0, 5, "VAT code: "+client.VATCode)
		doc.Ln(5)
	}
	if client.Address != "" {
		addr := clip(strings.ReplaceAll(client.Address, "\n", ", "), 120)
		doc.Cell(0, 5, "Address: "+addr)
		doc.Ln(5)
	}
	doc.Ln(5)

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(95, 6, "Description", "B", 0, "L", false, 0, "")
	doc.CellFormat(25, 6, "Qty", "B", 0, "R", false, 0, "")
	doc.CellFormat(30, 6, "Unit price", "B", 0, "R", false, 0, "")
	doc.CellFormat(30, 6, "Total", "B", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, line := range lines {
		desc := line.Description
		if utf8.RuneCountInString(desc) > 55 {
			desc = clip(desc, 52) + "..."
		}
		doc.CellFormat(95, 6, desc, "", 0, "L", false, 0, "")
		doc.CellFormat(25, 6, line.Quantity.String(), "", 0, "R", false, 0, "")
		doc.CellFormat(30, 6, line.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		doc.CellFormat(30, 6, line.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	doc.Ln(4)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(150, 6, "Net amount", "T", 0, "R", false, 0, "")
	doc.CellFormat(30, 6, invoice.NetAmount.StringFixed(2)+" EUR", "T", 1, "R", false, 0, "")
	vatPercent := invoice.VATRate.Mul(hundred).StringFixed(0)
	doc.CellFormat(150, 6, "VAT "+vatPercent+"%", "", 0, "R", false, 0, "")
	doc.CellFormat(30, 6, invoice.VATAmount.StringFixed(2)+" EUR", "", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(150, 8, "Total", "", 0, "R", false, 0, "")
	doc.CellFormat(30, 8, invoice.TotalAmount.StringFixed(2)+" EUR", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", invoice.Number, err)
	}
	return buf.Bytes(), nil
}
