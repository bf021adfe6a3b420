package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yourusername/billing/billing"
	"github.com/yourusername/billing/models"
	"gorm.io/gorm"
)

type WorkLogHandler struct {
	db *gorm.DB
}

func NewWorkLogHandler(db *gorm.DB) *WorkLogHandler {
	return &WorkLogHandler{db: db}
}

type CreateWorkLogRequest struct {
	ClientID    uint            `json:"client_id" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

func (h *WorkLogHandler) CreateWorkLog(c *gin.Context) {
	var req CreateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client models.Client
	if err := h.db.First(&client, req.ClientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	quantity := req.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}

	// store dates as UTC midnight so period bounds match regardless of the
	// clock time the request carried
	log := models.WorkLog{
		ClientID:    req.ClientID,
		Date:        billing.Date(req.Date.Year(), req.Date.Month(), req.Date.Day()),
		Description: req.Description,
		Quantity:    quantity,
		UnitPrice:   req.UnitPrice,
	}

	if err := h.db.Create(&log).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create work log"})
		return
	}

	c.JSON(http.StatusCreated, log)
}

func (h *WorkLogHandler) ListWorkLogs(c *gin.Context) {
	query := h.db.Order("date ASC, id ASC")
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if billed := c.Query("billed"); billed != "" {
		query = query.Where("billed = ?", billed == "true")
	}

	var logs []models.WorkLog
	if err := query.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch work logs"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

type UpdateWorkLogRequest struct {
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// UpdateWorkLog corrects a work entry. Billed entries are frozen: they are
// part of an issued invoice and can no longer be edited or re-billed.
func (h *WorkLogHandler) UpdateWorkLog(c *gin.Context) {
	id := c.Param("id")
	var log models.WorkLog
	if err := h.db.First(&log, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Work log not found"})
		return
	}

	if log.Billed {
		c.JSON(http.StatusConflict, gin.H{"error": "Work log is already billed"})
		return
	}

	var req UpdateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Date != nil {
		log.Date = billing.Date(req.Date.Year(), req.Date.Month(), req.Date.Day())
	}
	if req.Description != nil {
		log.Description = *req.Description
	}
	if req.Quantity != nil {
		log.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		log.UnitPrice = *req.UnitPrice
	}

	if err := h.db.Save(&log).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update work log"})
		return
	}

	c.JSON(http.StatusOK, log)
}

func (h *WorkLogHandler) DeleteWorkLog(c *gin.Context) {
	id := c.Param("id")
	var log models.WorkLog
	if err := h.db.First(&log, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Work log not found"})
		return
	}

	if log.Billed {
		c.JSON(http.StatusConflict, gin.H{"error": "Work log is already billed"})
		return
	}

	if err := h.db.Delete(&log).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete work log"})
		return
	}
	c.Status(http.StatusNoContent)
}
