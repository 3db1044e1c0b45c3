package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/metrics"
	"mjnutrafit/coaching-api/internal/ratelimit"
	"mjnutrafit/coaching-api/internal/service"
)

// Services bundles the business services the routes dispatch to.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Coach     service.CoachService
	Plans     service.PlanService
	Progress  service.ProgressService
	Dashboard service.DashboardService
}

// RouterOptions configures the middleware stack built by NewRouter.
type RouterOptions struct {
	Log            *logrus.Logger
	Production     bool
	AllowedOrigins []string
	// Limiter guards the credential endpoints. Nil disables limiting.
	Limiter *ratelimit.Limiter
}

// NewRouter builds the engine with logging, metrics, error handling and CORS
// in front of the routes.
func NewRouter(opts RouterOptions, services Services) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestLogger(opts.Log),
		metrics.Middleware(),
		ErrorHandler(opts.Log, opts.Production),
	)
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	SetupRoutes(router, opts.Limiter, services)
	return router
}

func SetupRoutes(router *gin.Engine, limiter *ratelimit.Limiter, services Services) {
	useJSONFieldNames()

	authHandler := NewAuthHandler(services.Auth)
	userHandler := NewUserHandler(services.Users)
	coachHandler := NewCoachHandler(services.Coach)
	planHandler := NewPlanHandler(services.Plans)
	progressHandler := NewProgressHandler(services.Progress)
	dashboardHandler := NewDashboardHandler(services.Dashboard)

	authMiddleware := AuthMiddleware(services.Auth)
	rateLimit := limiter.Middleware()
	coachOnly := RoleMiddleware(domain.RoleCoach)
	clientOnly := RoleMiddleware(domain.RoleClient)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := router.Group("/api")

	// --- Users ---
	userGroup := apiGroup.Group("/users")
	{
		userGroup.POST("/register", rateLimit, authHandler.Register)
		userGroup.POST("/login", rateLimit, authHandler.Login)

		userGroup.GET("/currentUser", authMiddleware, userHandler.CurrentUser)
		userGroup.PUT("/profile", authMiddleware, userHandler.UpdateProfile)
		userGroup.PUT("/change-password", authMiddleware, userHandler.ChangePassword)
		userGroup.POST("/upload-picture", authMiddleware, userHandler.UploadPicture)
	}

	// --- Auth ---
	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/refresh-token", rateLimit, authHandler.RefreshToken)
	}

	// --- Plans ---
	planGroup := apiGroup.Group("/plans")
	planGroup.Use(authMiddleware)
	{
		planGroup.POST("", coachOnly, planHandler.CreatePlan)
		planGroup.GET("", planHandler.GetPlans)
		planGroup.GET("/current", clientOnly, planHandler.GetCurrentPlan)
		planGroup.PUT("/:id", coachOnly, planHandler.UpdatePlan)
	}

	// --- Progress ---
	progressGroup := apiGroup.Group("/progress")
	progressGroup.Use(authMiddleware)
	{
		progressGroup.POST("", clientOnly, progressHandler.SubmitProgress)
		progressGroup.GET("", progressHandler.GetProgressLogs)
		progressGroup.GET("/:id", progressHandler.GetProgressLog)
	}

	// --- Coach ---
	// Every route requires a signed-in coach.
	coachGroup := apiGroup.Group("/coach")
	coachGroup.Use(authMiddleware, coachOnly)
	{
		coachGroup.GET("/pending-clients", coachHandler.GetPendingClients)
		coachGroup.POST("/approve-client/:clientId", coachHandler.ApproveClient)
		coachGroup.POST("/reject-client/:clientId", coachHandler.RejectClient)
		coachGroup.GET("/my-clients", coachHandler.GetMyClients)
		coachGroup.POST("/review-log/:logId", coachHandler.ReviewLog)
	}

	// --- Dashboard ---
	dashboardGroup := apiGroup.Group("/dashboard")
	dashboardGroup.Use(authMiddleware)
	{
		dashboardGroup.GET("/client", clientOnly, dashboardHandler.GetClientDashboard)
		dashboardGroup.GET("/coach", coachOnly, dashboardHandler.GetCoachDashboard)
	}
}
