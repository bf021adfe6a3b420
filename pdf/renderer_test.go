package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/billing/models"
)

func testInvoice() (*models.Invoice, []models.InvoiceLine, *models.Client) {
	date := func(d int) time.Time { return time.Date(2026, time.February, d, 0, 0, 0, 0, time.UTC) }
	invoice := &models.Invoice{
		Number:      "TST26-007",
		InvoiceType: models.InvoiceTypeMonthly,
		PeriodFrom:  time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:    time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		IssuedDate:  date(1),
		DueDate:     date(15),
		NetAmount:   decimal.RequireFromString("178.33"),
		VATRate:     decimal.RequireFromString("0.21"),
		VATAmount:   decimal.RequireFromString("37.45"),
		TotalAmount: decimal.RequireFromString("215.78"),
	}
	lines := []models.InvoiceLine{
		{Description: "Website maintenance", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("45.00"), Total: decimal.RequireFromString("45.00")},
		{Description: "Extra development", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("50.00"), Total: decimal.RequireFromString("100.00")},
	}
	client := &models.Client{
		Name:        "Acme Ltd",
		CompanyCode: "123456789",
		VATCode:     "LT123456789",
		Address:     "Main St 1\nVilnius",
	}
	return invoice, lines, client
}

func TestRender(t *testing.T) {
	renderer := NewRenderer()
	invoice, lines, client := testInvoice()

	content, err := renderer.Render(invoice, lines, client)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")), "output must be a PDF document")
	assert.Greater(t, len(content), 500)
}

func TestClipKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("ąčęėįšųūž ", 20)

	clipped := clip(long, 120)
	assert.True(t, utf8.ValidString(clipped))
	assert.Equal(t, 120, utf8.RuneCountInString(clipped))

	assert.Equal(t, "trumpa", clip("trumpa", 120))
}

func TestRenderLongMultiByteText(t *testing.T) {
	renderer := NewRenderer()
	invoice, lines, client := testInvoice()
	client.Address = strings.Repeat("Žalgirio g. 135, Vilnius; ", 10)
	lines[0].Description = strings.Repeat("Svetainės priežiūra ", 5)

	content, err := renderer.Render(invoice, lines, client)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestRenderIsDeterministic(t *testing.T) {
	renderer := NewRenderer()
	invoice, lines, client := testInvoice()

	first, err := renderer.Render(invoice, lines, client)
	require.NoError(t, err)
	second, err := renderer.Render(invoice, lines, client)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "same inputs must render identical documents")
}
