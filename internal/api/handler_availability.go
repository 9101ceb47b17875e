package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crew-booking-backend/internal/model"
	"crew-booking-backend/internal/parse"
	"crew-booking-backend/internal/schedule"
)

// GetAvailability lists workers free for a whole operating day, or for a
// specific slot when both startTime and duration are given.
//
//	GET /api/availability?date=2026-10-19
//	GET /api/availability?startTime=2026-10-19T10:00&duration=2&workersRequired=2
//	GET /api/availability?date=2026-10-19&startTime=10:00&duration=4
func (h *Handler) GetAvailability(c *gin.Context) {
	crewSize := 1
	if raw := c.Query("workersRequired"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !model.ValidCrewSize(n) {
			badRequest(c, model.ErrInvalidCrewSize.Error())
			return
		}
		crewSize = n
	}

	window, err := h.availabilityWindow(c.Query("date"), c.Query("startTime"), c.Query("duration"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	workers, err := h.coord.CheckAvailability(c.Request.Context(), window, crewSize)
	if err != nil {
		respondError(c, err)
		return
	}
	if workers == nil {
		workers = []model.Worker{}
	}
	c.JSON(http.StatusOK, workers)
}

func (h *Handler) availabilityWindow(date, startTime, duration string) (schedule.Window, error) {
	if startTime == "" || duration == "" {
		if date == "" {
			return schedule.Window{}, errMissingDate
		}
		day, err := h.cal.ParseDate(date)
		if err != nil {
			return schedule.Window{}, err
		}
		return h.cal.DayWindow(day), nil
	}

	hours, err := strconv.Atoi(duration)
	if err != nil || !model.ValidDuration(hours) {
		return schedule.Window{}, model.ErrInvalidDuration
	}
	start, err := h.slotStart(date, startTime)
	if err != nil {
		return schedule.Window{}, err
	}
	return h.cal.SlotWindow(start, hours), nil
}

// slotStart accepts a full local date-time, or a bare clock combined with date.
func (h *Handler) slotStart(date, startTime string) (time.Time, error) {
	if date != "" {
		if clock, err := parse.ParseClock(startTime); err == nil {
			day, err := h.cal.ParseDate(date)
			if err != nil {
				return time.Time{}, err
			}
			return day.Add(clock), nil
		}
	}
	return h.cal.ParseLocalDateTime(startTime)
}
