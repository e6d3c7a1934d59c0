package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldservice-backend/internal/model"
)

type saveClientRequest struct {
	CompanyName    string `json:"company_name" binding:"required"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	ContactName    string `json:"contact_name"`
	Notes          string `json:"notes"`
	SelectedMonths []int  `json:"selected_months"`
	Inactive       bool   `json:"inactive"`
}

func (r saveClientRequest) toModel(companyID, id int64) model.Client {
	return model.Client{
		ID:             id,
		CompanyID:      companyID,
		CompanyName:    r.CompanyName,
		Address:        r.Address,
		Phone:          r.Phone,
		Email:          r.Email,
		ContactName:    r.ContactName,
		Notes:          r.Notes,
		SelectedMonths: model.NewMonthSet(r.SelectedMonths...),
		Inactive:       r.Inactive,
		// NextDue is derived in the store; nothing from the request.
	}
}

// CreateClient handles POST /api/companies/{company_id}/clients.
func (h *Handler) CreateClient(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	var req saveClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := req.toModel(companyID, 0)
	if err := h.store.SaveClient(c.Request.Context(), &client, queryAsOf(c)); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// UpdateClient handles PUT /api/companies/{company_id}/clients/{id}.
func (h *Handler) UpdateClient(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}
	clientID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req saveClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := req.toModel(companyID, clientID)
	if err := h.store.SaveClient(c.Request.Context(), &client, queryAsOf(c)); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// ListClients handles GET /api/companies/{company_id}/clients.
func (h *Handler) ListClients(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	clients, err := h.store.ListClients(c.Request.Context(), companyID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}
