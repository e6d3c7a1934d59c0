package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UnscheduledClients handles GET /api/companies/{company_id}/schedule/unscheduled.
func (h *Handler) UnscheduledClients(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}
	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and month query parameters are required"})
		return
	}

	clients, err := h.store.UnscheduledClients(c.Request.Context(), companyID, year, month)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// PastIncompleteAssignments handles GET /api/companies/{company_id}/schedule/past-incomplete.
func (h *Handler) PastIncompleteAssignments(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	assignments, err := h.store.PastIncompleteAssignments(c.Request.Context(), companyID, queryAsOf(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// CompletedUnscheduledMaintenance handles GET /api/companies/{company_id}/schedule/completed-unscheduled.
func (h *Handler) CompletedUnscheduledMaintenance(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	records, err := h.store.CompletedUnscheduledMaintenance(c.Request.Context(), companyID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
