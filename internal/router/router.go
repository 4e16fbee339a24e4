package router

import (
	"net/http"
	"time"

	"github.com/classpad/classpad-backend/internal/config"
	"github.com/classpad/classpad-backend/internal/handler"
	"github.com/classpad/classpad-backend/internal/middleware"
	"github.com/classpad/classpad-backend/internal/response"
	"github.com/classpad/classpad-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Class      *handler.ClassHandler
	Assignment *handler.AssignmentHandler
	Student    *handler.StudentHandler
	Submission *handler.SubmissionHandler
	File       *handler.FileHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Signed Downloads (No Session) ──────────────────────────────
	// The HMAC signature in the URL is the credential. Intermediaries may
	// cache briefly; the full URL including signature is the cache key.
	filesGroup := router.Group("/files")
	filesGroup.Use(middleware.CacheControl(300))
	{
		filesGroup.GET("/*key", handlers.File.Download)
	}

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.POST("/classes/join", handlers.Student.JoinClass)
		studentAPI.GET("/classes", handlers.Student.ListClasses)
		studentAPI.DELETE("/classes/:class_id/membership", handlers.Student.LeaveClass)
		studentAPI.GET("/classes/:class_id/assignments", handlers.Student.ListClassAssignments)

		studentAPI.POST("/assignments/:assignment_id/submissions", handlers.Submission.Submit)
		studentAPI.GET("/assignments/:assignment_id/submissions", handlers.Submission.History)
		studentAPI.GET("/submissions", handlers.Student.ListSubmissions)
		studentAPI.GET("/submissions/:submission_id/download", handlers.Submission.DownloadURL)
	}

	// ─── 3. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.POST("/classes", handlers.Class.CreateClass)
		teacherAPI.GET("/classes", handlers.Class.ListClasses)
		teacherAPI.GET("/classes/:class_id", handlers.Class.GetClass)
		teacherAPI.PATCH("/classes/:class_id", handlers.Class.UpdateClass)
		teacherAPI.DELETE("/classes/:class_id", handlers.Class.DeleteClass)
		teacherAPI.GET("/classes/:class_id/students", handlers.Class.ListClassStudents)
		teacherAPI.DELETE("/classes/:class_id/students/:student_id", handlers.Class.RemoveStudent)

		teacherAPI.POST("/classes/:class_id/assignments", handlers.Assignment.CreateAssignment)
		teacherAPI.GET("/classes/:class_id/assignments", handlers.Class.ListClassAssignments)
		teacherAPI.GET("/assignments/:assignment_id", handlers.Assignment.GetAssignment)
		teacherAPI.PATCH("/assignments/:assignment_id", handlers.Assignment.UpdateAssignment)
		teacherAPI.DELETE("/assignments/:assignment_id", handlers.Assignment.DeleteAssignment)
		teacherAPI.GET("/assignments/:assignment_id/submissions", handlers.Assignment.ListSubmissions)

		teacherAPI.GET("/submissions/:submission_id/download", handlers.Submission.DownloadURL)
	}

	// ─── 4. WebSocket Group (Teacher WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireTeacherWSAuth(authService))
	{
		ws.GET("/teacher/classes/:class_id/submissions", handlers.WS.ClassSubmissionFeed)
	}

	return router
}
