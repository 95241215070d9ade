package app

import (
	"learning_system_backend/docs"
	"learning_system_backend/internal/config"
	"learning_system_backend/internal/middleware"
	"learning_system_backend/internal/model"
	"learning_system_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = cfg.Server.APIPrefix
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group(cfg.Server.APIPrefix)
	api.GET("/health", c.health.HealthCheck)
	api.POST("/auth/login", c.auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerSyllabusRoutes(authGroup, c)
		a.registerQuizRoutes(authGroup, c)
		a.registerChatRoutes(authGroup, c)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	adminOnly := middleware.RoleMiddleware(model.Admin)

	users := rg.Group("/users")
	{
		users.GET("/me", c.user.Me)
		users.GET("", c.user.ListUsers)
		users.POST("", adminOnly, c.user.CreateUser)
		users.PATCH("/:id", adminOnly, c.user.UpdateUser)
	}

	changes := rg.Group("/change-requests")
	{
		changes.POST("", c.changeRequest.Submit)
		changes.GET("/mine", c.changeRequest.ListMine)
		changes.GET("", adminOnly, c.changeRequest.List)
		changes.POST("/:id/review", adminOnly, c.changeRequest.Review)
	}
}

func (a *App) registerSyllabusRoutes(rg *gin.RouterGroup, c *controllers) {
	teachers := middleware.RoleMiddleware(model.Teacher)

	syllabus := rg.Group("/syllabus")
	{
		syllabus.GET("", c.syllabus.List)
		syllabus.POST("", teachers, c.syllabus.Create)
		syllabus.PATCH("/:id", teachers, c.syllabus.Update)
	}
}

func (a *App) registerQuizRoutes(rg *gin.RouterGroup, c *controllers) {
	teachers := middleware.RoleMiddleware(model.Teacher)
	students := middleware.RoleMiddleware(model.Student)

	quizzes := rg.Group("/quizzes")
	{
		quizzes.POST("/generate", teachers, c.quiz.Generate)
		quizzes.GET("", c.quiz.List)
		quizzes.GET("/attempts/mine", students, c.quiz.MyAttempts)
		quizzes.GET("/attempts/:attemptId", c.quiz.GetAttempt)
		quizzes.GET("/analytics/weak-areas/:studentId", c.quiz.WeakAreas)
		quizzes.GET("/analytics/weak-areas/:studentId/stored", c.quiz.StoredWeakAreas)
		quizzes.GET("/:id", c.quiz.Get)
		quizzes.GET("/:id/export", teachers, c.quiz.Export)
		quizzes.POST("/:id/attempts", students, c.quiz.SubmitAttempt)
	}
}

func (a *App) registerChatRoutes(rg *gin.RouterGroup, c *controllers) {
	chat := rg.Group("/chat")
	{
		chat.POST("/threads", c.chat.CreateThread)
		chat.GET("/threads", c.chat.ListThreads)
		chat.POST("/threads/:id/messages", c.chat.PostMessage)
		chat.GET("/threads/:id/messages", c.chat.ListMessages)
		chat.GET("/ws/:threadId", c.chat.Connect)
		chat.POST("/ai", c.chat.AskAI)
	}
}
