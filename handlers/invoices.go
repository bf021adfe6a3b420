package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/billing/billing"
	"github.com/yourusername/billing/models"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	db      *gorm.DB
	gen     *billing.Generator
	monitor *billing.Monitor
}

func NewInvoiceHandler(db *gorm.DB, gen *billing.Generator, monitor *billing.Monitor) *InvoiceHandler {
	return &InvoiceHandler{db: db, gen: gen, monitor: monitor}
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	query := h.db.Order("id DESC")
	if invoiceType := c.Query("type"); invoiceType != "" {
		query = query.Where("invoice_type = ?", invoiceType)
	}
	if paid := c.Query("paid"); paid != "" {
		query = query.Where("paid = ?", paid == "true")
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	var invoice models.Invoice

	err := h.db.Preload("Client").Preload("Lines").First(&invoice, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// MarkPaid flags an invoice as paid. This is the reconciliation step that
// stops hosting payment reminders.
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id := c.Param("id")
	var invoice models.Invoice
	if err := h.db.First(&invoice, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	invoice.Paid = true
	if err := h.db.Save(&invoice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invoice"})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// ResendInvoice re-dispatches an existing invoice with a regenerated
// document. The invoice itself is not recomputed.
func (h *InvoiceHandler) ResendInvoice(c *gin.Context) {
	id := c.Param("id")
	var invoice models.Invoice
	if err := h.db.Preload("Client").First(&invoice, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	warnings := h.gen.Redispatch(&invoice, "")
	c.JSON(http.StatusOK, gin.H{"number": invoice.Number, "warnings": warnings})
}

type GenerateMonthlyRequest struct {
	Month      string `json:"month"`       // YYYY-MM, empty uses run-day defaulting
	IssuedDate string `json:"issued_date"` // YYYY-MM-DD
	Force      bool   `json:"force"`
	Resend     bool   `json:"resend"`
	AllowPaid  bool   `json:"allow_paid"`
}

func (h *InvoiceHandler) GenerateMonthly(c *gin.Context) {
	var req GenerateMonthlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, to, issued, err := billing.ResolvePeriod(req.Month, req.IssuedDate, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary := h.gen.GenerateMonthly(from, to, issued, req.Force, req.Resend, req.AllowPaid)
	c.JSON(http.StatusOK, summaryResponse(summary))
}

type GenerateManualRequest struct {
	WorkLogIDs []uint `json:"work_log_ids" binding:"required"`
	IssuedDate string `json:"issued_date"` // YYYY-MM-DD, defaults to today
}

func (h *InvoiceHandler) GenerateManual(c *gin.Context) {
	var req GenerateManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issued := time.Now()
	if req.IssuedDate != "" {
		parsed, err := time.Parse("2006-01-02", req.IssuedDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issued_date, expected YYYY-MM-DD"})
			return
		}
		issued = parsed
	}
	issued = billing.Date(issued.Year(), issued.Month(), issued.Day())

	summary, err := h.gen.GenerateManual(req.WorkLogIDs, issued)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summaryResponse(summary))
}

type HostingCheckRequest struct {
	Today      string `json:"today"` // YYYY-MM-DD, defaults to today
	Days       int    `json:"days"`
	RemindDays int    `json:"remind_days"`
}

func (h *InvoiceHandler) RunHostingCheck(c *gin.Context) {
	var req HostingCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	today := time.Now()
	if req.Today != "" {
		parsed, err := time.Parse("2006-01-02", req.Today)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid today, expected YYYY-MM-DD"})
			return
		}
		today = parsed
	}

	days := req.Days
	if days <= 0 {
		days = billing.DefaultAdvanceDays
	}
	remindDays := req.RemindDays
	if remindDays <= 0 {
		remindDays = billing.DefaultReminderDays
	}

	summary := h.monitor.Run(today, days, remindDays)
	c.JSON(http.StatusOK, summaryResponse(summary))
}

// summaryResponse flattens Result errors to strings for the JSON payload.
func summaryResponse(summary billing.Summary) gin.H {
	type resultView struct {
		ClientID   uint            `json:"client_id"`
		ClientName string          `json:"client_name"`
		Outcome    billing.Outcome `json:"outcome"`
		Number     string          `json:"number,omitempty"`
		Warnings   []string        `json:"warnings,omitempty"`
		Error      string          `json:"error,omitempty"`
	}

	views := make([]resultView, 0, len(summary.Results))
	for _, res := range summary.Results {
		view := resultView{
			ClientID:   res.ClientID,
			ClientName: res.ClientName,
			Outcome:    res.Outcome,
			Warnings:   res.Warnings,
		}
		if res.Invoice != nil {
			view.Number = res.Invoice.Number
		}
		if res.Err != nil {
			view.Error = res.Err.Error()
		}
		views = append(views, view)
	}

	return gin.H{
		"created": summary.Created,
		"resent":  summary.Resent,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
		"results": views,
	}
}
