package handlers

import (
	"SalvadoDental/middlewares"
	"SalvadoDental/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	service *services.AppointmentService
}

func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// CreateAppointment books a pending appointment for the calling patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var input services.CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	appointment, err := h.service.Create(c.Request.Context(), actor.ProfileID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointment, http.StatusCreated)
}

// GetAllAppointments lists every appointment for the doctor and the caller's own for a patient.
func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointments, err := h.service.ListFor(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointments, http.StatusOK)
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), c.Param("appointment_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointment, http.StatusOK)
}

// AcceptAppointment confirms a pending appointment at the requested time.
func (h *AppointmentHandler) AcceptAppointment(c *gin.Context) {
	var body struct {
		ScheduledAt string `json:"scheduled_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	appointment, err := h.service.Accept(c.Request.Context(), c.Param("appointment_id"), body.ScheduledAt)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointment, http.StatusOK)
}

func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, err := h.service.Cancel(c.Request.Context(), c.Param("appointment_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointment, http.StatusOK)
}
