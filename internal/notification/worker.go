package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/metrics"
	"crew-booking-backend/internal/model"
)

var log = logger.New("notification")

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// queuePerWorker bounds the backlog per worker goroutine.
const queuePerWorker = 64

// WorkerPool sends crew assignment pushes for committed bookings.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	loc     *time.Location
	metrics metrics.Recorder
}

// NewWorkerPool creates a new worker pool. Job times are rendered in loc.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, loc *time.Location) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size*queuePerWorker),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		loc:     loc,
		metrics: metrics.NopRecorder{},
	}
}

// SetMetrics sets the recorder used for delivery outcomes.
func (wp *WorkerPool) SetMetrics(m metrics.Recorder) {
	wp.metrics = m
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Debugf("Worker %d started", id)
	for {
		select {
		case bookingID := <-wp.jobs:
			log.Debugf("Worker %d processing booking %d", id, bookingID)
			wp.sendNotificationsForBooking(ctx, bookingID)
		case <-ctx.Done():
			log.Debugf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a booking without blocking. When the queue is full the
// notification is dropped; the booking itself is already committed.
func (wp *WorkerPool) Dispatch(bookingID int64) {
	select {
	case wp.jobs <- bookingID:
	default:
		log.Warnf("notification queue full, dropping booking %d", bookingID)
		wp.metrics.IncNotification("dropped")
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// sendNotificationsForBooking notifies every device subscribed to a worker on the booking's crew.
func (wp *WorkerPool) sendNotificationsForBooking(ctx context.Context, bookingID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Select("DISTINCT push_subscriptions.*").
		Joins("JOIN subscription_worker_mapping swm ON swm.push_subscription_endpoint = push_subscriptions.endpoint").
		Joins("JOIN occupancies ON occupancies.worker_id = swm.worker_id").
		Where("occupancies.booking_id = ?", bookingID).
		Find(&subscriptions).Error
	if err != nil {
		log.Errorf("Error fetching subscriptions for booking %d: %v", bookingID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Infof("Sending %d notifications for booking %d", len(subscriptions), bookingID)

	message := fmt.Sprintf("New job #%d assigned", bookingID)
	var booking model.Booking
	if err := wp.db.WithContext(ctx).
		Select("start_time", "duration").
		First(&booking, bookingID).Error; err != nil {
		log.Warnf("Error fetching booking %d: %v", bookingID, err)
	} else {
		message = fmt.Sprintf("New job #%d assigned: %s, %d hours",
			bookingID, booking.StartTime.In(wp.loc).Format("2006-01-02 15:04"), booking.Duration)
	}

	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Errorf("Error sending notification to %s: %v", sub.Endpoint, err)
		wp.metrics.IncNotification("failed")
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Infof("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		wp.metrics.IncNotification("expired")
		if err := wp.db.WithContext(ctx).Select(clause.Associations).Delete(&sub).Error; err != nil {
			log.Errorf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return
	}
	wp.metrics.IncNotification("sent")
}
