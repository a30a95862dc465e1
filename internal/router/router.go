package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shubukan/shubukan-backend/internal/config"
	"github.com/shubukan/shubukan-backend/internal/handler"
	"github.com/shubukan/shubukan-backend/internal/middleware"
	"github.com/shubukan/shubukan-backend/internal/response"
	"github.com/shubukan/shubukan-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Portal   *handler.PortalHandler
	Exam     *handler.ExamHandler
	Question *handler.QuestionHandler
	Result   *handler.ResultHandler
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

	// Rate limiter for the waiting-room resolve endpoint. Clients poll it while Waiting,
	// so the bound is generous but still caps abusive loops (60 requests per minute per IP).
	resolveLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Exam Portal (Anonymous or Any Token) ───────────────────────
	examAPI := router.Group("/api/v1/exams")
	{
		examAPI.POST("/resolve",
			resolveLimiter.Middleware(),
			middleware.OptionalIdentity(authService),
			handlers.Portal.Resolve,
		)
		examAPI.POST("/sets/:id/submit",
			middleware.RequireStudentJWT(authService),
			handlers.Portal.Submit,
		)
		examAPI.GET("/upcoming",
			middleware.OptionalIdentity(authService),
			handlers.Exam.ListUpcoming,
		)
	}

	// ─── 2. Student Group ──────────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/results", handlers.Portal.MyResults)
	}

	// ─── 3. Instructor Group ───────────────────────────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(authService))
	{
		instructorAPI.GET("/results", handlers.Result.InstructorResults)
		instructorAPI.GET("/results/:id/sheet", handlers.Result.AnswerSheet)
		instructorAPI.GET("/exams/papers", handlers.Result.QuestionPapers)
	}

	// ─── 4. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Exam set management
		adminAPI.GET("/exams", handlers.Exam.ListSets)
		adminAPI.POST("/exams", handlers.Exam.CreateSet)
		adminAPI.POST("/exams/:examID/sets", handlers.Exam.AddSet)
		adminAPI.GET("/exam-sets/:id", handlers.Exam.GetSet)
		adminAPI.PUT("/exam-sets/:id", handlers.Exam.UpdateSet)
		adminAPI.DELETE("/exam-sets/:id", handlers.Exam.DeleteSet)

		// Question bank
		adminAPI.GET("/questions", handlers.Question.ListQuestions)
		adminAPI.POST("/questions", handlers.Question.CreateQuestion)
		adminAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		adminAPI.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Result review
		adminAPI.GET("/results", handlers.Result.ListResults)
	}

	return router
}
