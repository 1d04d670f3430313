// File: medibook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	"medibook/cron"
	"medibook/database"
	appointmentRepo "medibook/database/repository/appointment"
	articleRepo "medibook/database/repository/article"
	doctorRepo "medibook/database/repository/doctor"
	userRepoPkg "medibook/database/repository/user"
	"medibook/handlers"
	"medibook/middleware"
	"medibook/routes"
	"medibook/services/admin"
	"medibook/services/booking"
	"medibook/services/doctor"
	"medibook/services/triage"
	"medibook/services/user"
	"medibook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// repositories.
	docRepo := doctorRepo.NewMongoDoctorRepo()
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	artRepo := articleRepo.NewMongoArticleRepo()

	for _, err := range []error{
		docRepo.EnsureIndexes(),
		apptRepo.EnsureIndexes(),
		userRepo.EnsureIndexes(),
	} {
		if err != nil {
			logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
		}
	}

	// services.
	ledger := &booking.DefaultSlotLedger{Repo: docRepo}
	gateway := booking.NewStripeGateway(logger)

	bookingService := &booking.DefaultBookingService{
		Doctors:        docRepo,
		Appointments:   apptRepo,
		Ledger:         ledger,
		Gateway:        gateway,
		Logger:         logger,
		ReservationTTL: time.Duration(config.AppConfig.ReservationTTLMin) * time.Minute,
		Currency:       config.AppConfig.Currency,
		SuccessURL:     config.AppConfig.PaymentSuccessURL,
		CancelURL:      config.AppConfig.PaymentCancelURL,
	}
	reconciler := &booking.DefaultReconciliationService{
		Appointments: apptRepo,
		Ledger:       ledger,
		Gateway:      gateway,
		Logger:       logger,
	}

	userService := &user.DefaultUserService{Repo: userRepo}
	doctorService := &doctor.DefaultDoctorService{Repo: docRepo}
	adminService := &admin.DefaultAdminService{
		Doctors:      docRepo,
		Appointments: apptRepo,
		Articles:     artRepo,
	}
	triageService := triage.NewGeminiTriageService(config.AppConfig.GeminiAPIKey)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		User:    handlers.NewUserHandler(userService, triageService),
		Doctor:  handlers.NewDoctorHandler(doctorService),
		Admin:   handlers.NewAdminHandler(adminService, bookingService),
		Booking: handlers.NewBookingHandler(bookingService, reconciler, logger),
		Webhook: handlers.NewPaymentWebhookHandler(reconciler, logger),
		Article: handlers.NewArticleHandler(artRepo),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the reservation expiry sweep.
	cron.InitSweepWorker(reconciler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
