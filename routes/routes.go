package routes

import (
	"net/http"

	"medibook/handlers"
	"medibook/middleware"
	"medibook/models"

	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates every handler the router needs.
type HandlerBundle struct {
	User    *handlers.UserHandler
	Doctor  *handlers.DoctorHandler
	Admin   *handlers.AdminHandler
	Booking *handlers.BookingHandler
	Webhook *handlers.PaymentWebhookHandler
	Article *handlers.ArticleHandler
}

// RegisterRoutes wires all endpoint groups onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	registerHealthRoute(r)
	registerUserRoutes(r, hb)
	registerDoctorRoutes(r, hb)
	registerAdminRoutes(r, hb)
	registerPaymentRoutes(r, hb)
	registerArticleRoutes(r, hb)
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm medibook"})
	})
}

func registerUserRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/user")
	{
		api.POST("/register", hb.User.Register)
		api.POST("/login", hb.User.Login)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuth(models.RolePatient))
		api.GET("/profile", hb.User.GetProfile)
		api.PUT("/profile", hb.User.UpdateProfile)
		api.POST("/triage", hb.User.SuggestSpecialist)

		api.POST("/book-appointment", hb.Booking.BookAppointment)
		api.POST("/payment/:appointmentId", hb.Booking.RequestPayment)
		api.GET("/payment/verify", hb.Booking.VerifyPayment)
		api.POST("/cancel-appointment", hb.Booking.CancelAppointment)
		api.GET("/appointments", hb.Booking.ListPatientAppointments)
	}
}

func registerDoctorRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/doctor")
	{
		// Public doctor directory.
		api.POST("/login", hb.Doctor.Login)
		api.GET("/list", hb.Doctor.List)
		api.GET("/:doctorId/slots", hb.Booking.Availability)

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(models.RoleDoctor))
		protected.GET("/profile", hb.Doctor.GetProfile)
		protected.PUT("/profile", hb.Doctor.UpdateProfile)
		protected.POST("/change-availability", hb.Doctor.ChangeAvailability)
		protected.GET("/appointments", hb.Booking.ListDoctorAppointments)
		protected.POST("/complete-appointment", hb.Booking.CompleteAppointment)
		protected.POST("/cancel-appointment", hb.Booking.CancelAppointment)
	}
}

func registerAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.POST("/login", hb.Admin.Login)

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(models.RoleAdmin))
		protected.POST("/doctors", hb.Admin.AddDoctor)
		protected.GET("/doctors", hb.Admin.ListDoctors)
		protected.GET("/appointments", hb.Admin.ListAppointments)
		protected.POST("/cancel-appointment", hb.Admin.CancelAppointment)
		protected.GET("/dashboard", hb.Admin.Dashboard)
		protected.POST("/doctors/:doctorId/rebuild-calendar", hb.Admin.RebuildCalendar)

		protected.POST("/articles", hb.Admin.PublishArticle)
		protected.PUT("/articles/:id", hb.Admin.UpdateArticle)
		protected.DELETE("/articles/:id", hb.Admin.DeleteArticle)
	}
}

func registerPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	// Webhook authenticates via the provider signature, not a bearer token.
	r.POST("/api/payment/webhook", hb.Webhook.HandleWebhook)
}

func registerArticleRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/articles")
	{
		api.GET("", hb.Article.List)
		api.GET("/:id", hb.Article.Get)
	}
}
