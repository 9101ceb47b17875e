package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crew-booking-backend/internal/booking"
	"crew-booking-backend/internal/model"
)

type bookingRequest struct {
	StartTime       string `json:"startTime" binding:"required"`
	Duration        int    `json:"duration"`
	RequiredWorkers int    `json:"requiredWorkers"`
}

type bookingResponse struct {
	model.Booking
	Crew []model.Worker `json:"crew"`
}

func newBookingResponse(res *booking.Result) bookingResponse {
	crew := res.Crew
	if crew == nil {
		crew = []model.Worker{}
	}
	return bookingResponse{Booking: res.Booking, Crew: crew}
}

func (h *Handler) bindBooking(c *gin.Context) (booking.Request, bool) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return booking.Request{}, false
	}
	start, err := h.cal.ParseLocalDateTime(req.StartTime)
	if err != nil {
		badRequest(c, err.Error())
		return booking.Request{}, false
	}
	return booking.Request{
		StartTime:       start,
		Duration:        req.Duration,
		RequiredWorkers: req.RequiredWorkers,
	}, true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// CreateBooking allocates a crew and commits a new booking.
func (h *Handler) CreateBooking(c *gin.Context) {
	req, ok := h.bindBooking(c)
	if !ok {
		return
	}
	res, err := h.coord.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(res))
}

// UpdateBooking re-runs allocation for an existing booking.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	req, ok := h.bindBooking(c)
	if !ok {
		return
	}
	res, err := h.coord.UpdateBooking(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(res))
}

// GetBooking returns one booking with its crew.
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.coord.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(res))
}

// ListAssignments returns every worker assignment with its booking.
func (h *Handler) ListAssignments(c *gin.Context) {
	occupancies, err := h.coord.ListAssignments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if occupancies == nil {
		occupancies = []model.Occupancy{}
	}
	c.JSON(http.StatusOK, occupancies)
}
