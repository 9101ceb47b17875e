package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crew-booking-backend/internal/model"
	"crew-booking-backend/internal/parse"
)

type workerRequest struct {
	Name           string `json:"name" binding:"required"`
	WorkingHours   string `json:"workingHours"`
	WorksOnRestDay bool   `json:"worksOnRestDay"`
	VehicleID      *int64 `json:"vehicleId"`
}

// toModel validates the working hours and stores them in canonical form.
func (r workerRequest) toModel() (model.Worker, error) {
	w := model.Worker{
		Name:           r.Name,
		WorksOnRestDay: r.WorksOnRestDay,
		VehicleID:      r.VehicleID,
		WorkingHours:   parse.DefaultWorkingHours,
	}
	if r.WorkingHours != "" {
		wh, err := parse.ParseWorkingHours(r.WorkingHours)
		if err != nil {
			return model.Worker{}, err
		}
		w.WorkingHours = wh.String()
	}
	return w, nil
}

func (h *Handler) bindWorker(c *gin.Context) (model.Worker, bool) {
	var req workerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return model.Worker{}, false
	}
	w, err := req.toModel()
	if err != nil {
		badRequest(c, err.Error())
		return model.Worker{}, false
	}
	return w, true
}

// ListWorkers returns the whole directory in id order.
func (h *Handler) ListWorkers(c *gin.Context) {
	workers, err := h.store.ListWorkers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if workers == nil {
		workers = []model.Worker{}
	}
	c.JSON(http.StatusOK, workers)
}

// GetWorker returns one worker.
func (h *Handler) GetWorker(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, err := h.store.GetWorker(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// CreateWorker adds a worker to the directory.
func (h *Handler) CreateWorker(c *gin.Context) {
	w, ok := h.bindWorker(c)
	if !ok {
		return
	}
	if err := h.store.CreateWorker(c.Request.Context(), &w); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// UpdateWorker replaces a worker's attributes.
func (h *Handler) UpdateWorker(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, ok := h.bindWorker(c)
	if !ok {
		return
	}
	w.ID = id
	if err := h.store.UpdateWorker(c.Request.Context(), &w); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWorker removes a worker that has no assignments.
func (h *Handler) DeleteWorker(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteWorker(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
