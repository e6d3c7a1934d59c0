package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fieldservice-backend/internal/store"
)

type createAssignmentRequest struct {
	ClientID      int64   `json:"client_id" binding:"required"`
	Year          int     `json:"year" binding:"required"`
	Month         int     `json:"month" binding:"required"`
	Day           *int    `json:"day"`
	ScheduledHour *int    `json:"scheduled_hour"`
	AutoDueDate   bool    `json:"auto_due_date"`
	TechnicianIDs []int64 `json:"technician_ids"`
}

// CreateAssignment handles POST /api/companies/{company_id}/assignments.
func (h *Handler) CreateAssignment(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.store.CreateAssignment(c.Request.Context(), companyID, store.CreateAssignmentParams{
		ClientID:      req.ClientID,
		Year:          req.Year,
		Month:         req.Month,
		Day:           req.Day,
		ScheduledHour: req.ScheduledHour,
		AutoDueDate:   req.AutoDueDate,
		TechnicianIDs: req.TechnicianIDs,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	h.notifyVisit(assignment.ID, assignment.Day != nil, len(assignment.TechnicianIDs) > 0)
	c.JSON(http.StatusCreated, assignment)
}

// updateAssignmentRequest distinguishes "absent" from "explicitly null" via
// raw JSON fields, so an operator can clear a day or the completion notes.
type updateAssignmentRequest struct {
	Day             json.RawMessage `json:"day"`
	ScheduledDate   json.RawMessage `json:"scheduled_date"`
	ScheduledHour   json.RawMessage `json:"scheduled_hour"`
	AutoDueDate     *bool           `json:"auto_due_date"`
	Completed       *bool           `json:"completed"`
	CompletionNotes json.RawMessage `json:"completion_notes"`
	TechnicianIDs   *[]int64        `json:"technician_ids"`
}

// UpdateAssignment handles PATCH /api/companies/{company_id}/assignments/{id}.
func (h *Handler) UpdateAssignment(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}
	assignmentID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}

	var req updateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := store.AssignmentUpdate{
		AutoDueDate:   req.AutoDueDate,
		Completed:     req.Completed,
		TechnicianIDs: req.TechnicianIDs,
	}
	var err error
	if upd.Day, err = optionalInt(req.Day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be a number or null"})
		return
	}
	if upd.ScheduledHour, err = optionalInt(req.ScheduledHour); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_hour must be a number or null"})
		return
	}
	if upd.ScheduledDate, err = optionalTime(req.ScheduledDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be RFC3339 or null"})
		return
	}
	if upd.CompletionNotes, err = optionalString(req.CompletionNotes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "completion_notes must be a string or null"})
		return
	}

	assignment, err := h.store.UpdateAssignment(c.Request.Context(), companyID, assignmentID, upd)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	// A reschedule onto a dated slot is worth a fresh reminder.
	if req.Day != nil || req.TechnicianIDs != nil {
		h.notifyVisit(assignment.ID, assignment.Day != nil, len(assignment.TechnicianIDs) > 0)
	}
	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment handles DELETE /api/companies/{company_id}/assignments/{id}.
func (h *Handler) DeleteAssignment(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}
	assignmentID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}

	if err := h.store.DeleteAssignment(c.Request.Context(), companyID, assignmentID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAssignments handles GET /api/companies/{company_id}/assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
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

	var technicianID *int64
	if raw := c.Query("technician_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
			return
		}
		technicianID = &id
	}

	assignments, err := h.store.ListForPeriod(c.Request.Context(), companyID, year, month, technicianID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// TechnicianToday handles GET /api/technicians/{technician_id}/today.
// Not company-scoped: the technician id implies the tenant.
func (h *Handler) TechnicianToday(c *gin.Context) {
	technicianID, ok := pathID(c, "technician_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician id"})
		return
	}

	assignments, err := h.store.ListForTechnicianToday(c.Request.Context(), technicianID, queryAsOf(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

func (h *Handler) notifyVisit(assignmentID int64, dated, hasTechnicians bool) {
	if h.reminder == nil || !dated || !hasTechnicians {
		return
	}
	h.reminder.Dispatch(assignmentID)
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrClientNotInTenant),
		errors.Is(err, store.ErrTechnicianNotInTenant),
		errors.Is(err, store.ErrNoRecurrenceMonths),
		errors.Is(err, store.ErrInvalidPeriod):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// queryAsOf reads the optional as_of query parameter. The wall clock is only
// read here, at the edge; everything below takes the time as an argument.
func queryAsOf(c *gin.Context) time.Time {
	if raw := c.Query("as_of"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

func optionalInt(raw json.RawMessage) (**int, error) {
	if raw == nil {
		return nil, nil
	}
	var v *int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalString(raw json.RawMessage) (**string, error) {
	if raw == nil {
		return nil, nil
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalTime(raw json.RawMessage) (**time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	var v *time.Time
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
