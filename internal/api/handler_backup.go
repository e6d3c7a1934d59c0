package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldservice-backend/internal/backup"
)

// ExportBackup handles GET /api/companies/{company_id}/backup. Responds with
// the flat-file CSV for the company's clients, parts and equipment.
func (h *Handler) ExportBackup(c *gin.Context) {
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

	records := make([]backup.ClientRecord, len(clients))
	for i, client := range clients {
		records[i] = backup.ClientRecord{
			Client:    client,
			Parts:     client.Parts,
			Equipment: client.Equipment,
		}
	}

	text, err := backup.Encode(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="clients-backup.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(text))
}

type importReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
}

// ImportBackup handles POST /api/companies/{company_id}/backup. The request
// body is the CSV text. Bad rows and bad records are reported, not fatal;
// the response always carries counts plus the itemized error list.
func (h *Handler) ImportBackup(c *gin.Context) {
	companyID, ok := pathID(c, "company_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := backup.Decode(string(body), queryAsOf(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := importReport{Total: result.Total, Skipped: result.Skipped, Errors: []string{}}
	for _, rowErr := range result.Errors {
		report.Errors = append(report.Errors, rowErr.Error())
	}

	imported, importErrs := h.store.ImportClients(c.Request.Context(), companyID, result.Records, queryAsOf(c))
	report.Imported = imported
	for _, err := range importErrs {
		report.Errors = append(report.Errors, err.Error())
		report.Skipped++
	}

	c.JSON(http.StatusOK, report)
}
