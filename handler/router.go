package handler

import (
	"net/http"
	"time"

	"coursegen/logger"
	"coursegen/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	JWTSecret      string
	AIRequests     int
	AIWindow       time.Duration
}

func NewRouter(h *Handler, limiter *middleware.RateLimiter, log *logger.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowCredentials = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization",
		middleware.HeaderRequestID, middleware.HeaderUserID, middleware.HeaderUserRole, middleware.HeaderAPIKey}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	if cfg.AIRequests <= 0 {
		cfg.AIRequests = 30
	}
	if cfg.AIWindow <= 0 {
		cfg.AIWindow = time.Minute
	}
	aiLimit := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		aiLimit = limiter.Limit("ai", cfg.AIRequests, cfg.AIWindow)
	}
	admin := middleware.RequireAdmin()

	api := r.Group("/api")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		aiGroup := api.Group("/ai")
		aiGroup.Use(aiLimit)
		{
			aiGroup.POST("/outline", h.GenerateOutline)
			aiGroup.POST("/prompt", h.Prompt)
			aiGroup.POST("/generate", h.Generate)
			aiGroup.POST("/chat", h.Chat)
			aiGroup.POST("/yt", h.FindVideo)
			aiGroup.POST("/image", h.FindImage)
			aiGroup.POST("/transcript", h.Transcript)
			aiGroup.POST("/project-suggestions", h.ResolveSuggestions)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", h.ListUserCourses)
			courses.GET("/all", admin, h.ListAllCourses)
			courses.POST("/create", h.CreateCourse)
			courses.POST("/generate-content", aiLimit, h.FillSubtopic)
			courses.POST("/update-progress", h.UpdateProgress)
			courses.POST("/finish", h.FinishCourse)
			courses.GET("/:courseId", h.GetCourse)
			courses.DELETE("/:courseId", h.DeleteCourse)
		}
		api.GET("/dashboard", admin, h.Dashboard)

		quiz := api.Group("/quiz")
		{
			quiz.POST("/generate", aiLimit, h.GenerateQuiz)
			quiz.POST("", h.SaveQuizResult)
			quiz.GET("/:userId", h.ListQuizResults)
		}
		api.POST("/quiz-results", h.SaveQuizResult)

		perf := api.Group("/performance")
		{
			perf.GET("/all", admin, h.GetAllPerformance)
			perf.POST("/score", h.RecordDailyScore)
			perf.GET("/:uid", h.GetPerformance)
		}
		api.POST("/updateCountsForAllUsers", admin, h.RecomputeAllStreaks)

		templates := api.Group("/project-templates")
		{
			templates.GET("", h.ListTemplates)
			templates.POST("", aiLimit, h.ResolveSuggestions)
			templates.POST("/:templateId/assign", h.AssignTemplate)
		}
		api.POST("/project-suggestions", aiLimit, h.ResolveSuggestions)

		projects := api.Group("/projects")
		{
			projects.POST("", h.SaveProject)
			projects.GET("", h.ListUserProjects)
			projects.PATCH("/:projectId", h.UpdateUserProject)
			projects.DELETE("/:projectId", h.DeleteProject)
			projects.POST("/:projectId/approve", admin, h.ApproveProject)
			projects.POST("/:projectId/reject", admin, h.RejectProject)
		}
	}
	return r
}
