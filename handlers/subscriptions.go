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

// normalizeDate truncates a timestamp to UTC midnight, matching how the
// engine keys hosting invoices on the expiry date.
func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := billing.Date(t.Year(), t.Month(), t.Day())
	return &day
}

type SubscriptionHandler struct {
	db *gorm.DB
}

func NewSubscriptionHandler(db *gorm.DB) *SubscriptionHandler {
	return &SubscriptionHandler{db: db}
}

type CreateSubscriptionRequest struct {
	ClientID          uint             `json:"client_id" binding:"required"`
	Title             string           `json:"title" binding:"required"`
	MonthlyFee        decimal.Decimal  `json:"monthly_fee"`
	HostingYearlyFee  *decimal.Decimal `json:"hosting_yearly_fee"`
	HostingValidUntil *time.Time       `json:"hosting_valid_until"`
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client models.Client
	if err := h.db.First(&client, req.ClientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	sub := models.Subscription{
		ClientID:          req.ClientID,
		Title:             req.Title,
		MonthlyFee:        req.MonthlyFee,
		HostingYearlyFee:  req.HostingYearlyFee,
		HostingValidUntil: normalizeDate(req.HostingValidUntil),
		Active:            true,
	}

	if err := h.db.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	query := h.db.Order("id ASC")
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var subs []models.Subscription
	if err := query.Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

type UpdateSubscriptionRequest struct {
	Title             *string          `json:"title"`
	MonthlyFee        *decimal.Decimal `json:"monthly_fee"`
	HostingYearlyFee  *decimal.Decimal `json:"hosting_yearly_fee"`
	HostingValidUntil *time.Time       `json:"hosting_valid_until"`
	Active            *bool            `json:"active"`
}

func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	id := c.Param("id")
	var sub models.Subscription
	if err := h.db.First(&sub, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		sub.Title = *req.Title
	}
	if req.MonthlyFee != nil {
		sub.MonthlyFee = *req.MonthlyFee
	}
	if req.HostingYearlyFee != nil {
		sub.HostingYearlyFee = req.HostingYearlyFee
	}
	if req.HostingValidUntil != nil {
		sub.HostingValidUntil = normalizeDate(req.HostingValidUntil)
	}
	if req.Active != nil {
		sub.Active = *req.Active
	}

	if err := h.db.Save(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}

	c.JSON(http.StatusOK, sub)
}
