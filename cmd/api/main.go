package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/ecosistemala/meetingup-backend/internal/config"
	"github.com/ecosistemala/meetingup-backend/internal/handler"
	"github.com/ecosistemala/meetingup-backend/internal/middleware"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/internal/service"
	"github.com/ecosistemala/meetingup-backend/pkg/database"
	"github.com/ecosistemala/meetingup-backend/pkg/email"
	"github.com/ecosistemala/meetingup-backend/pkg/logger"
	"github.com/ecosistemala/meetingup-backend/pkg/qrcode"
	"github.com/ecosistemala/meetingup-backend/pkg/storage"
	"github.com/ecosistemala/meetingup-backend/pkg/utils"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	zapLogger := logger.New()
	defer zapLogger.Sync()

	db := database.NewDatabase(cfg.DatabaseURL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Infrastructure
	r2Storage, err := storage.NewR2Storage(cfg)
	if err != nil {
		log.Fatal("Failed to initialize R2 storage:", err)
	}
	emailService := email.NewEmailService(cfg, zapLogger)
	qrService := qrcode.NewQRService(cfg.PublicBaseURL)
	validator := utils.NewValidator()

	// Services
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, qrService, r2Storage, zapLogger)
	meetingService := service.NewMeetingService(meetingRepo)
	attendanceService := service.NewAttendanceService(meetingRepo, userRepo)
	registrationService := service.NewRegistrationService(
		meetingRepo,
		userRepo,
		userService,
		validator,
		emailService,
		qrService,
		zapLogger,
		cfg.PublicBaseURL,
		cfg.TurnstileSecret,
	)
	surveyService := service.NewSurveyService(surveyRepo, meetingRepo)
	ticketService := service.NewTicketService(ticketRepo)
	statsService := service.NewStatsService(meetingRepo, userRepo, surveyRepo, statsRepo)
	raffleService := service.NewRaffleService(meetingRepo, userRepo)

	// Session middleware and guards
	mw := middleware.New(userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, mw)
	userHandler := handler.NewUserHandler(userService, validator, mw)
	meetingHandler := handler.NewMeetingHandler(meetingService, validator, mw)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, meetingService, mw)
	registrationHandler := handler.NewRegistrationHandler(registrationService, meetingService, mw)
	surveyHandler := handler.NewSurveyHandler(surveyService, validator, mw)
	ticketHandler := handler.NewTicketHandler(ticketService, validator, mw)
	statsHandler := handler.NewStatsHandler(statsService, mw)
	raffleHandler := handler.NewRaffleHandler(raffleService)
	kioskHandler := handler.NewKioskHandler(meetingService, authService, mw)

	// Router
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.PublicBaseURL + ", http://localhost:5173",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	// Every route sees the resolved session identity
	app.Use(mw.ResolveIdentity)

	// Public surface
	app.Get("/", registrationHandler.Landing)
	app.Post("/login", authHandler.Login)
	app.Post("/logout", authHandler.Logout)
	app.Get("/meetings/:id", registrationHandler.PublicMeeting)
	app.Get("/meetings/:id/signup", registrationHandler.SignupPage)
	app.Post("/meetings/:id/signup", registrationHandler.Signup)
	app.Post("/surveys/:id/responses", surveyHandler.SubmitResponse)

	// Admin/helper panel
	panel := app.Group("/panel", mw.AdminOrHelper)
	panel.Get("/", authHandler.Dashboard)

	panel.Get("/users", userHandler.List)
	panel.Get("/users/export", mw.AdminOnly, userHandler.Export)
	panel.Post("/users", mw.AdminOnly, userHandler.Create)
	panel.Get("/users/:id", userHandler.Get)
	panel.Put("/users/:id", userHandler.Update)
	panel.Delete("/users/:id", mw.AdminOnly, userHandler.Delete)
	panel.Post("/users/:id/photo", userHandler.UploadPhoto)
	panel.Post("/users/:id/featured", mw.AdminOnly, userHandler.ToggleFeatured)
	panel.Post("/users/:id/hide", mw.AdminOnly, userHandler.HideProfile)

	panel.Get("/meetings", meetingHandler.List)
	panel.Get("/meetings/interested", meetingHandler.Interested)
	panel.Post("/meetings", mw.AdminOnly, meetingHandler.Create)
	panel.Put("/meetings/:id", mw.AdminOnly, meetingHandler.Update)
	panel.Delete("/meetings/:id", mw.AdminOnly, meetingHandler.Delete)

	panel.Get("/attendance", attendanceHandler.Control)
	panel.Get("/meetings/:id/roster", attendanceHandler.Roster)
	panel.Post("/meetings/:id/attendees", attendanceHandler.ManualAdd)
	panel.Post("/meetings/:id/attendees/:userID/remove", attendanceHandler.Remove)
	panel.Get("/meetings/:id/attendees", attendanceHandler.Attendees)
	panel.Get("/meetings/:id/attendees/export", attendanceHandler.ExportAttendees)

	panel.Get("/surveys", surveyHandler.List)
	panel.Post("/surveys", mw.AdminOnly, surveyHandler.Create)
	panel.Delete("/surveys/:id", mw.AdminOnly, surveyHandler.Delete)
	panel.Get("/surveys/:id/responses", surveyHandler.Responses)
	panel.Post("/surveys/responses/:responseID/featured", mw.AdminOnly, surveyHandler.ToggleFeatured)

	panel.Get("/tickets", ticketHandler.List)
	panel.Get("/tickets/:id", ticketHandler.Detail)
	panel.Post("/tickets", ticketHandler.Submit)
	panel.Put("/tickets/:id/status", ticketHandler.UpdateStatus)
	panel.Post("/tickets/:id/replies", ticketHandler.Reply)

	panel.Get("/stats", statsHandler.Dashboard)
	panel.Get("/stats/export", statsHandler.Export)

	// Kiosk terminals
	kiosk := app.Group("/kiosk", mw.KioskOnly)
	kiosk.Get("/", kioskHandler.Meetings)
	kiosk.Get("/meetings/:id/scanner", kioskHandler.Scanner)

	// JSON API shared by panel and kiosk scanners
	api := app.Group("/api", mw.PrivilegedAPI)
	api.Get("/users/search", userHandler.Search)
	api.All("/meetings/:id/attendees/:userID", attendanceHandler.Scan)
	api.Get("/raffle/participants", raffleHandler.Participants)
	api.All("/kiosk/verify-exit", kioskHandler.VerifyExit)

	log.Fatal(app.Listen(":" + cfg.Port))
}
