package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fieldservice-backend/internal/mw"
	"fieldservice-backend/internal/notification"
	"fieldservice-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, webpushOptions *webpush.Options, reminder *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, webpushOptions, reminder)

	// Rate limit: 10 requests per second with a burst of 5.
	rateLimiter := mw.RateLimiter(rate.Limit(10), 5)

	// Schedule reports are cheap to cache briefly; mutations bypass it.
	cacheStore := cache.New(time.Minute, 5*time.Minute)
	caching := mw.Cache(cacheStore, time.Minute)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		companies := api.Group("/companies/:company_id")
		{
			companies.GET("/clients", handler.ListClients)
			companies.POST("/clients", handler.CreateClient)
			companies.PUT("/clients/:id", handler.UpdateClient)

			companies.GET("/assignments", handler.ListAssignments)
			companies.POST("/assignments", handler.CreateAssignment)
			companies.PATCH("/assignments/:id", handler.UpdateAssignment)
			companies.DELETE("/assignments/:id", handler.DeleteAssignment)

			companies.GET("/schedule/unscheduled", caching, handler.UnscheduledClients)
			companies.GET("/schedule/past-incomplete", caching, handler.PastIncompleteAssignments)
			companies.GET("/schedule/completed-unscheduled", caching, handler.CompletedUnscheduledMaintenance)

			companies.GET("/backup", handler.ExportBackup)
			companies.POST("/backup", handler.ImportBackup)
		}

		api.GET("/technicians/:technician_id/today", handler.TechnicianToday)
		api.GET("/technicians/:technician_id/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
