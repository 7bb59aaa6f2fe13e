package routes

import (
	"SalvadoDental/config"
	"SalvadoDental/controllers"
	"SalvadoDental/handlers"
	"SalvadoDental/metrics"
	"SalvadoDental/middlewares"
	"SalvadoDental/repositories"
	"SalvadoDental/services"
	"SalvadoDental/sse"
	"SalvadoDental/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Backend holds the stores and infrastructure the services run on.
type Backend struct {
	Appointments repositories.AppointmentRepository
	Profiles     repositories.ProfileRepository
	Schedules    repositories.ScheduleRepository
	Codes        services.CodeStore
	Locker       services.Locker
	Mailer       utils.Mailer
	Tokens       *utils.TokenMaker
	Recorder     metrics.Recorder
	Metrics      http.Handler
}

// Services are the wired application services shared by the router and background jobs.
type Services struct {
	Auth         *services.AuthService
	Appointments *services.AppointmentService
	Schedule     *services.ScheduleService
	Broadcaster  *sse.Broadcaster
	Tokens       *utils.TokenMaker
	Metrics      http.Handler
}

// NewServices builds the application services on top of backend.
func NewServices(config *config.AppConfig, backend Backend) *Services {
	broadcaster := sse.NewBroadcaster()
	return &Services{
		Auth: services.NewAuthService(backend.Profiles, backend.Codes, backend.Locker, backend.Mailer, backend.Tokens),
		Appointments: services.NewAppointmentService(
			backend.Appointments,
			backend.Profiles,
			backend.Schedules,
			backend.Recorder,
			broadcaster,
			config.Location(),
		),
		Schedule:    services.NewScheduleService(backend.Schedules, backend.Recorder, broadcaster),
		Broadcaster: broadcaster,
		Tokens:      backend.Tokens,
		Metrics:     backend.Metrics,
	}
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(config *config.AppConfig, svc *Services) http.Handler {
	if config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// CORS runs first so preflight requests are answered without the API key
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(config.AllowedOrigins)))

	router.Use(middlewares.ValidateBearerToken(config.GetBearerToken()))

	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: config.RateLimit.RequestsPerSecond,
		Burst:             config.RateLimit.Burst,
	}))

	router.Use(middlewares.LoggingMiddleware())

	authHandler := handlers.NewAuthHandler(svc.Auth)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Appointments)
	scheduleHandler := handlers.NewScheduleHandler(svc.Schedule)
	eventsHandler := handlers.NewEventsHandler(svc.Broadcaster, svc.Appointments)

	controllers.NewAuthController(authHandler, svc.Tokens).RegisterRoutes(router)
	controllers.SetupBookingRoutes(router, svc.Tokens, appointmentHandler, scheduleHandler, eventsHandler)
	controllers.SetupRootRoute(router, svc.Metrics)

	return router
}
