package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/handlers"
	"github.com/taskhub-dev/taskhub/internal/middleware"
	"github.com/taskhub-dev/taskhub/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			// Permission grants (upsert) and revocation
			projects.POST("/:project_id/permissions", handlers.GrantPermission)
			projects.DELETE("/:project_id/permissions", handlers.RevokePermission)

			// Milestones
			projects.POST("/:project_id/milestones", handlers.CreateMilestone)
			projects.GET("/:project_id/milestones", handlers.ListMilestones)
			projects.PATCH("/:project_id/milestones/:milestone_id", handlers.UpdateMilestone)
			projects.DELETE("/:project_id/milestones/:milestone_id", handlers.DeleteMilestone)

			// Activity logs
			projects.POST("/:project_id/logs", handlers.AppendLog)
			projects.GET("/:project_id/logs", handlers.ListLogs)

			// Dependency cycle report
			projects.GET("/:project_id/dependencies/cycles", handlers.ListDependencyCycles)
		}

		milestones := api.Group("/milestones", middleware.AuthMiddleware())
		{
			milestones.POST("/:milestone_id/tasks", handlers.CreateTask)
			milestones.GET("/:milestone_id/tasks", handlers.ListTasks)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.PATCH("/:task_id", handlers.UpdateTask)
			tasks.DELETE("/:task_id", handlers.DeleteTask)
			tasks.POST("/:task_id/comments", handlers.AddComment)
			tasks.GET("/:task_id/comments", handlers.ListComments)
			tasks.POST("/:task_id/dependencies", handlers.AddDependency)
		}

		tags := api.Group("/tags", middleware.AuthMiddleware())
		{
			tags.POST("", handlers.CreateTag)
			tags.GET("", handlers.ListTags)
			tags.DELETE("/:tag_id", handlers.DeleteTag)
		}

		reportGroups := api.Group("/report-groups", middleware.AuthMiddleware())
		{
			reportGroups.POST("", handlers.CreateReportGroup)
			reportGroups.GET("", handlers.ListReportGroups)
			reportGroups.DELETE("/:group_id", handlers.DeleteReportGroup)
		}
	}

	return r
}
