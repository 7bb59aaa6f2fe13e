package main

import (
	"SalvadoDental/cache"
	"SalvadoDental/config"
	"SalvadoDental/cronjobs"
	"SalvadoDental/database"
	"SalvadoDental/metrics"
	"SalvadoDental/repositories"
	"SalvadoDental/routes"
	"SalvadoDental/services"
	"SalvadoDental/utils"
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	config, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.InitDB(ctx, config.DBURL, config.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.CloseDB(db); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		URL:          config.RedisAddress,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		MaxRetries:   config.Redis.MaxRetries,
	})
	if err != nil {
		log.Fatalf("failed to initialize Redis client: %v", err)
	}
	defer redisClient.Close()

	cache, err := cache.NewCache(redisClient)
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}

	tokens, err := utils.NewTokenMaker(config.SymmetricKey)
	if err != nil {
		log.Fatalf("failed to initialize token maker: %v", err)
	}

	var mailer utils.Mailer = utils.LogMailer{}
	if config.MailEnabled() {
		mailer = utils.NewSMTPMailer(config.SMTP.Host, config.SMTP.Port, config.SMTP.User, config.SMTP.Pass, config.SMTP.From)
	} else {
		log.Println("SMTP_HOST not set, mails are written to the log")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	appointmentRepo := repositories.NewAppointmentRepository(db, cache)
	locker := database.NewRedisLocker(redisClient)

	svc := routes.NewServices(config, routes.Backend{
		Appointments: appointmentRepo,
		Profiles:     repositories.NewProfileRepository(db),
		Schedules:    repositories.NewScheduleRepository(db, cache),
		Codes:        utils.NewConfirmationCodeStore(cache),
		Locker:       locker,
		Mailer:       mailer,
		Tokens:       tokens,
		Recorder:     recorder,
		Metrics:      metrics.Handler(registry),
	})

	if err := svc.Auth.EnsureDoctor(ctx, services.DoctorAccount{
		Email:       config.Doctor.Email,
		Password:    config.Doctor.Password,
		FirstName:   config.Doctor.FirstName,
		LastName:    config.Doctor.LastName,
		DateOfBirth: config.Doctor.DOB,
	}); err != nil {
		log.Fatalf("failed to ensure doctor profile: %v", err)
	}

	reminder := cronjobs.NewAppointmentReminder(appointmentRepo, mailer, locker, recorder, config.Location(), config.Reminder.LeadTime)
	scheduler, err := reminder.StartReminderCron(config.Reminder.Interval)
	if err != nil {
		log.Fatalf("failed to start reminder job: %v", err)
	}
	defer scheduler.Stop()

	// Cancelled on shutdown so open event streams end.
	requestCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	srv := &http.Server{
		Addr:           config.HTTPAddr,
		BaseContext:    func(net.Listener) context.Context { return requestCtx },
		Handler:        routes.SetupRoutes(config, svc),
		ReadTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
		// No WriteTimeout: event streams stay open for as long as the client listens.
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		log.Printf("Starting server on %s", config.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Println("Shutting down server...")
	database.MonitorRedisPool(redisClient)
	cancelRequests()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %+v", err)
	}

	wg.Wait()
	log.Println("Server exited gracefully")
}
