package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/billing/models"
	"gorm.io/gorm"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type CreateClientRequest struct {
	Name        string `json:"name" binding:"required"`
	CompanyCode string `json:"company_code"`
	VATCode     string `json:"vat_code"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := models.Client{
		Name:        req.Name,
		CompanyCode: req.CompanyCode,
		VATCode:     req.VATCode,
		Email:       req.Email,
		Address:     req.Address,
		Active:      true,
	}

	if err := h.db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	id := c.Param("id")
	var client models.Client

	err := h.db.Preload("Emails").Preload("Subscriptions").First(&client, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	query := h.db.Order("name ASC")
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var clients []models.Client
	if err := query.Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

type UpdateClientRequest struct {
	Name        *string `json:"name"`
	CompanyCode *string `json:"company_code"`
	VATCode     *string `json:"vat_code"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Active      *bool   `json:"active"`
}

// UpdateClient edits registry fields. Deactivation stops future invoice
// generation but leaves historical invoices untouched.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id := c.Param("id")
	var client models.Client
	if err := h.db.First(&client, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.CompanyCode != nil {
		client.CompanyCode = *req.CompanyCode
	}
	if req.VATCode != nil {
		client.VATCode = *req.VATCode
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Active != nil {
		client.Active = *req.Active
	}

	if err := h.db.Save(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, client)
}

type AddClientEmailRequest struct {
	Email     string `json:"email" binding:"required,email"`
	EmailType string `json:"email_type"`
}

func (h *ClientHandler) AddClientEmail(c *gin.Context) {
	id := c.Param("id")
	var client models.Client
	if err := h.db.First(&client, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var req AddClientEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emailType := req.EmailType
	if emailType == "" {
		emailType = "other"
	}

	email := models.ClientEmail{
		ClientID:  client.ID,
		Email:     req.Email,
		EmailType: emailType,
		Active:    true,
	}

	if err := h.db.Create(&email).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add client email"})
		return
	}

	c.JSON(http.StatusCreated, email)
}

func (h *ClientHandler) RemoveClientEmail(c *gin.Context) {
	if err := h.db.Delete(&models.ClientEmail{}, c.Param("emailId")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove client email"})
		return
	}
	c.Status(http.StatusNoContent)
}
