package api

import (
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"fieldservice-backend/internal/notification"
	"fieldservice-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	webpush  *webpush.Options
	reminder *notification.WorkerPool
}

// NewHandler creates a new API handler. reminder may be nil when push is not
// configured; visit reminders are then skipped.
func NewHandler(s store.Store, webpushOptions *webpush.Options, reminder *notification.WorkerPool) *Handler {
	return &Handler{
		store:    s,
		webpush:  webpushOptions,
		reminder: reminder,
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
