package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"fieldservice-backend/internal/model"
)

// ReminderSender defines the interface for sending a web push notification.
type ReminderSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of ReminderSender using the
// webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans visit reminders out to the assigned technicians' push
// subscriptions. Jobs are assignment ids.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  ReminderSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Reminder worker %d started", id)
	for {
		select {
		case assignmentID := <-wp.jobs:
			wp.sendRemindersForAssignment(ctx, assignmentID)
		case <-ctx.Done():
			log.Printf("Reminder worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a reminder for an assignment.
func (wp *WorkerPool) Dispatch(assignmentID int64) {
	wp.jobs <- assignmentID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// sendRemindersForAssignment loads the assignment and pushes a reminder to
// every subscription of every assigned technician. Undated or unassigned
// jobs are dropped silently; the dispatcher does not pre-filter.
func (wp *WorkerPool) sendRemindersForAssignment(ctx context.Context, assignmentID int64) {
	var assignment model.CalendarAssignment
	err := wp.db.WithContext(ctx).Preload("Client").First(&assignment, assignmentID).Error
	if err != nil {
		log.Printf("Error fetching assignment %d: %v", assignmentID, err)
		return
	}
	if assignment.Day == nil || len(assignment.TechnicianIDs) == 0 {
		return
	}

	var subscriptions []model.TechnicianSubscription
	err = wp.db.WithContext(ctx).
		Where("technician_id IN ?", []int64(assignment.TechnicianIDs)).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for assignment %d: %v", assignmentID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	message := fmt.Sprintf("Visit scheduled: %s on %04d-%02d-%02d (job #%d)",
		assignment.Client.CompanyName, assignment.Year, assignment.Month, *assignment.Day, assignment.JobNumber)
	if assignment.ScheduledHour != nil {
		message = fmt.Sprintf("%s at %02d:00", message, *assignment.ScheduledHour)
	}

	log.Printf("Sending %d reminders for assignment %d", len(subscriptions), assignmentID)
	for _, sub := range subscriptions {
		wp.sendReminder(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendReminder(ctx context.Context, sub model.TechnicianSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending reminder to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions.
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
