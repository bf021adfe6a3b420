package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/billing/billing"
	"github.com/yourusername/billing/config"
	"github.com/yourusername/billing/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

type MockRenderer struct {
	RenderFunc func(invoice *models.Invoice, lines []models.InvoiceLine, client *models.Client) ([]byte, error)
}

func (m *MockRenderer) Render(invoice *models.Invoice, lines []models.InvoiceLine, client *models.Client) ([]byte, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(invoice, lines, client)
	}
	return []byte("%PDF-1.4 test"), nil
}

type MockSender struct {
	SendFunc func(to, bcc []string, subject, body string, attachment *billing.Attachment) error
	Subjects []string
}

func (m *MockSender) Send(to, bcc []string, subject, body string, attachment *billing.Attachment) error {
	m.Subjects = append(m.Subjects, subject)
	if m.SendFunc != nil {
		return m.SendFunc(to, bcc, subject, body, attachment)
	}
	return nil
}

func newTestHandler(t *testing.T) (*InvoiceHandler, *gorm.DB, *MockSender) {
	t.Helper()
	db := setupTestDB(t)
	sender := &MockSender{}
	gen := billing.NewGenerator(db, &MockRenderer{}, sender, billing.Options{Prefix: "TST26"})
	monitor := billing.NewMonitor(db, gen)
	return NewInvoiceHandler(db, gen, monitor), db, sender
}

func seedTestClient(t *testing.T, db *gorm.DB, name, email string) *models.Client {
	t.Helper()
	client := &models.Client{Name: name, Email: email, Active: true}
	require.NoError(t, db.Create(client).Error)
	return client
}

func seedTestInvoice(t *testing.T, db *gorm.DB, clientID uint, number string) *models.Invoice {
	t.Helper()
	invoice := &models.Invoice{
		ClientID:    clientID,
		Number:      number,
		InvoiceType: models.InvoiceTypeMonthly,
		PeriodFrom:  time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:    time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		IssuedDate:  time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC),
		NetAmount:   decimal.RequireFromString("45.00"),
		VATRate:     decimal.RequireFromString("0.21"),
		VATAmount:   decimal.RequireFromString("9.45"),
		TotalAmount: decimal.RequireFromString("54.45"),
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestGenerateMonthlyEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, db, sender := newTestHandler(t)

	client := seedTestClient(t, db, "Acme Ltd", "billing@acme.test")
	sub := &models.Subscription{ClientID: client.ID, Title: "Maintenance", MonthlyFee: decimal.RequireFromString("45.00"), Active: true}
	require.NoError(t, db.Create(sub).Error)

	router := gin.Default()
	router.POST("/invoices/generate-monthly", handler.GenerateMonthly)

	t.Run("Valid Request", func(t *testing.T) {
		body, _ := json.Marshal(GenerateMonthlyRequest{Month: "2026-01"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/invoices/generate-monthly", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Created int `json:"created"`
			Failed  int `json:"failed"`
			Results []struct {
				ClientName string `json:"client_name"`
				Outcome    string `json:"outcome"`
				Number     string `json:"number"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Created)
		assert.Zero(t, resp.Failed)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Acme Ltd", resp.Results[0].ClientName)
		assert.Equal(t, "TST26-001", resp.Results[0].Number)
		assert.Len(t, sender.Subjects, 1)

		var invoice models.Invoice
		require.NoError(t, db.First(&invoice).Error)
		assert.Equal(t, "45.00", invoice.NetAmount.StringFixed(2))
	})

	t.Run("Rerun Skips Duplicate", func(t *testing.T) {
		body, _ := json.Marshal(GenerateMonthlyRequest{Month: "2026-01"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/invoices/generate-monthly", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "skipped_duplicate")

		var count int64
		require.NoError(t, db.Model(&models.Invoice{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("Invalid Month", func(t *testing.T) {
		body, _ := json.Marshal(GenerateMonthlyRequest{Month: "January"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/invoices/generate-monthly", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGenerateManualEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, db, _ := newTestHandler(t)

	client := seedTestClient(t, db, "Acme Ltd", "billing@acme.test")
	log := &models.WorkLog{
		ClientID:    client.ID,
		Date:        time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
		Description: "Migration",
		Quantity:    decimal.NewFromInt(3),
		UnitPrice:   decimal.RequireFromString("40.00"),
	}
	require.NoError(t, db.Create(log).Error)

	router := gin.Default()
	router.POST("/invoices/generate-manual", handler.GenerateManual)

	t.Run("Valid Request", func(t *testing.T) {
		body, _ := json.Marshal(GenerateManualRequest{WorkLogIDs: []uint{log.ID}, IssuedDate: "2026-01-20"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/invoices/generate-manual", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var invoice models.Invoice
		require.NoError(t, db.Where("invoice_type = ?", models.InvoiceTypeManual).First(&invoice).Error)
		assert.Equal(t, "120.00", invoice.NetAmount.StringFixed(2))

		var billed models.WorkLog
		require.NoError(t, db.First(&billed, log.ID).Error)
		assert.True(t, billed.Billed)
	})

	t.Run("Missing IDs", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/invoices/generate-manual", bytes.NewBufferString(`{}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Already Billed", func(t *testing.T) {
		body, _ := json.Marshal(GenerateManualRequest{WorkLogIDs: []uint{log.ID}})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/invoices/generate-manual", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMarkPaid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, db, _ := newTestHandler(t)
	client := seedTestClient(t, db, "Acme Ltd", "billing@acme.test")
	invoice := seedTestInvoice(t, db, client.ID, "TST26-001")

	router := gin.Default()
	router.POST("/invoices/:id/paid", handler.MarkPaid)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/invoices/1/paid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Invoice
	require.NoError(t, db.First(&updated, invoice.ID).Error)
	assert.True(t, updated.Paid)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/invoices/999/paid", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResendInvoice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, db, sender := newTestHandler(t)
	client := seedTestClient(t, db, "Acme Ltd", "billing@acme.test")
	seedTestInvoice(t, db, client.ID, "TST26-001")

	router := gin.Default()
	router.POST("/invoices/:id/resend", handler.ResendInvoice)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/invoices/1/resend", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TST26-001")
	require.Len(t, sender.Subjects, 1)
	assert.Equal(t, "Invoice TST26-001", sender.Subjects[0])
}

func TestListInvoices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, db, _ := newTestHandler(t)
	client := seedTestClient(t, db, "Acme Ltd", "billing@acme.test")
	first := seedTestInvoice(t, db, client.ID, "TST26-001")
	seedTestInvoice(t, db, client.ID, "TST26-002")
	require.NoError(t, db.Model(first).Update("paid", true).Error)

	router := gin.Default()
	router.GET("/invoices", handler.ListInvoices)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/invoices?paid=false", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var invoices []models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoices))
	require.Len(t, invoices, 1)
	assert.Equal(t, "TST26-002", invoices[0].Number)
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	cfg := &config.Config{JWTSecret: "test-secret"}
	gen := billing.NewGenerator(db, &MockRenderer{}, &MockSender{}, billing.Options{Prefix: "TST26"})
	router := NewRouter(db, cfg, gen, billing.NewMonitor(db, gen))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "billing-api")
}
