package controllers

import (
	"SalvadoDental/handlers"
	"SalvadoDental/middlewares"
	"SalvadoDental/models"
	"SalvadoDental/utils"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers schedule, appointment and live event routes.
// Every route needs a session; role gates sit on the individual groups.
func SetupBookingRoutes(
	router gin.IRouter,
	tokens *utils.TokenMaker,
	appointmentHandler *handlers.AppointmentHandler,
	scheduleHandler *handlers.ScheduleHandler,
	eventsHandler *handlers.EventsHandler,
) {
	session := router.Group("/", middlewares.TokenAuthMiddleware(tokens))
	{
		session.GET("/schedule", scheduleHandler.GetSchedule)
		session.GET("/appointments", appointmentHandler.GetAllAppointments)
		session.GET("/appointments/:appointment_id", appointmentHandler.GetAppointmentByID)
		session.PUT("/appointments/:appointment_id/cancel", appointmentHandler.CancelAppointment)
		session.GET("/appointments/:appointment_id/countdown", eventsHandler.StreamCountdown)
	}

	patient := session.Group("/", middlewares.RoleAuthMiddleware(models.RolePatient))
	{
		patient.POST("/appointments", appointmentHandler.CreateAppointment)
	}

	doctor := session.Group("/", middlewares.RoleAuthMiddleware(models.RoleDoctor))
	{
		doctor.PUT("/schedule/:weekday_id", scheduleHandler.UpdateScheduleEntry)
		doctor.PUT("/appointments/:appointment_id/accept", appointmentHandler.AcceptAppointment)
		doctor.GET("/events", eventsHandler.StreamEvents)
	}
}
