package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"crew-booking-backend/internal/availability"
	"crew-booking-backend/internal/booking"
	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/schedule"
	"crew-booking-backend/internal/store"
)

var log = logger.New("api")

var errMissingDate = errors.New("date is required unless startTime and duration are given")

// Handler holds shared dependencies for API handlers.
type Handler struct {
	coord   *booking.Coordinator
	store   store.Store
	webpush *webpush.Options
	cal     schedule.Calendar
}

// NewHandler creates a new API handler.
func NewHandler(coord *booking.Coordinator, s store.Store, webpushOptions *webpush.Options) *Handler {
	h := &Handler{
		coord:   coord,
		store:   s,
		webpush: webpushOptions,
		cal:     schedule.DefaultCalendar(),
	}
	if coord != nil {
		h.cal = coord.Calendar()
	}
	return h
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrInvalidRequest), errors.Is(err, store.ErrUnknownVehicle):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrBookingNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case booking.IsCapacity(err), errors.Is(err, store.ErrInUse):
		status = http.StatusConflict
	case errors.Is(err, availability.ErrDataIntegrity):
		log.Errorf("data integrity failure on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
