package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crew-booking-backend/internal/model"
)

type vehicleRequest struct {
	Name string `json:"name" binding:"required"`
}

func bindVehicle(c *gin.Context) (model.Vehicle, bool) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "invalid request")
		return model.Vehicle{}, false
	}
	return model.Vehicle{Name: strings.TrimSpace(req.Name)}, true
}

// ListVehicles returns every vehicle with its workers.
func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.store.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	c.JSON(http.StatusOK, vehicles)
}

// GetVehicle returns one vehicle with its workers.
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := h.store.GetVehicle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// CreateVehicle adds a vehicle.
func (h *Handler) CreateVehicle(c *gin.Context) {
	v, ok := bindVehicle(c)
	if !ok {
		return
	}
	if err := h.store.CreateVehicle(c.Request.Context(), &v); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// UpdateVehicle renames a vehicle.
func (h *Handler) UpdateVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, ok := bindVehicle(c)
	if !ok {
		return
	}
	v.ID = id
	if err := h.store.UpdateVehicle(c.Request.Context(), &v); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DeleteVehicle removes a vehicle; its workers are left without one.
func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteVehicle(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
