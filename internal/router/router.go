package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Task         *apiHandler.TaskHandler
	Project      *apiHandler.ProjectHandler
	Notification *apiHandler.NotificationHandler
	Gamification *apiHandler.GamificationHandler
	Analytics    *apiHandler.AnalyticsHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	// Auth routes
	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))
	api.GET("/auth/me", authMiddleware(handlers.Auth.Me))

	// Protected routes
	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	api.POST("/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))
	api.POST("/tasks/{id}/assign", authMiddleware(handlers.Task.AssignTask))
	api.POST("/tasks/{id}/comments", authMiddleware(handlers.Task.AddComment))
	api.POST("/tasks/{id}/subtasks", authMiddleware(handlers.Task.AddSubtask))
	api.PUT("/tasks/{id}/subtasks/{subtaskID}", authMiddleware(handlers.Task.UpdateSubtask))
	api.DELETE("/tasks/{id}/subtasks/{subtaskID}", authMiddleware(handlers.Task.DeleteSubtask))
	api.POST("/tasks/{id}/subtasks/{subtaskID}/toggle", authMiddleware(handlers.Task.ToggleSubtask))

	api.GET("/projects", authMiddleware(handlers.Project.GetProjects))
	api.POST("/projects", authMiddleware(handlers.Project.CreateProject))
	api.GET("/projects/{id}", authMiddleware(handlers.Project.GetProject))
	api.PUT("/projects/{id}", authMiddleware(handlers.Project.UpdateProject))
	api.DELETE("/projects/{id}", authMiddleware(handlers.Project.DeleteProject))
	api.POST("/projects/{id}/archive", authMiddleware(handlers.Project.ArchiveProject))
	api.POST("/projects/{id}/restore", authMiddleware(handlers.Project.RestoreProject))

	api.GET("/notifications", authMiddleware(handlers.Notification.List))
	api.DELETE("/notifications", authMiddleware(handlers.Notification.Clear))
	api.GET("/notifications/unread", authMiddleware(handlers.Notification.Unread))
	api.POST("/notifications/read-all", authMiddleware(handlers.Notification.MarkAllRead))
	api.POST("/notifications/{id}/read", authMiddleware(handlers.Notification.MarkRead))
	api.DELETE("/notifications/{id}", authMiddleware(handlers.Notification.Delete))

	api.GET("/gamification/progress", authMiddleware(handlers.Gamification.Progress))
	api.GET("/gamification/achievements", authMiddleware(handlers.Gamification.Achievements))
	api.GET("/gamification/next-level", authMiddleware(handlers.Gamification.NextLevel))

	api.GET("/analytics/activity", authMiddleware(handlers.Analytics.Activity))
	api.GET("/analytics/metrics", authMiddleware(handlers.Analytics.Metrics))
	api.GET("/analytics/completion-rate", authMiddleware(handlers.Analytics.CompletionRate))
	api.GET("/analytics/productivity", authMiddleware(handlers.Analytics.Productivity))

	return r
}
