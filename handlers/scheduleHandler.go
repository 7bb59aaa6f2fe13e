package handlers

import (
	"SalvadoDental/middlewares"
	"SalvadoDental/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	service *services.ScheduleService
}

func NewScheduleHandler(service *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, entries, http.StatusOK)
}

// UpdateScheduleEntry applies a partial update to one weekday.
func (h *ScheduleHandler) UpdateScheduleEntry(c *gin.Context) {
	weekdayID, err := strconv.Atoi(c.Param("weekday_id"))
	if err != nil {
		middlewares.HttpError(c, "Invalid weekday ID", http.StatusBadRequest, err)
		return
	}

	var update services.ScheduleUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	entry, err := h.service.UpdateEntry(c.Request.Context(), weekdayID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, entry, http.StatusOK)
}
