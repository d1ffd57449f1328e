package handler

import (
	"goaltracker/middleware"
	"goaltracker/model"
	"goaltracker/usecase"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every resource handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Goals         *GoalHandler
	Tasks         *TaskHandler
	Streaks       *StreakHandler
	Reflections   *ReflectionHandler
	Guardians     *GuardianHandler
	Subscriptions *SubscriptionHandler
	Health        *HealthHandler
}

// RouteGuards are the middleware the protected API depends on.
type RouteGuards struct {
	Auth         gin.HandlerFunc
	Entitlements middleware.EntitlementChecker
	RateLimit    gin.HandlerFunc
}

func RegisterRoutes(router *gin.Engine, h Handlers, guards RouteGuards) {
	if h.Health != nil {
		router.GET("/health", h.Health.Check)
	}

	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}
	}

	protected := router.Group("/api")
	protected.Use(guards.Auth, middleware.CacheControlMiddleware("no-store"))
	if guards.RateLimit != nil {
		protected.Use(guards.RateLimit)
	}
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/user/profile", h.Auth.Profile)

		goals := protected.Group("/goals")
		{
			goals.POST("", h.Goals.CreateGoal)
			goals.GET("", h.Goals.ListGoals)
			goals.GET("/:id", h.Goals.GetGoal)
			goals.PATCH("/:id", h.Goals.UpdateGoal)
			goals.PUT("/:id/status", h.Goals.SetStatus)
			goals.PUT("/:id/archive", h.Goals.Archive)
			goals.DELETE("/:id", h.Goals.DeleteGoal)
			goals.GET("/:id/insights", h.Goals.Insights)
			goals.GET("/:id/streak", h.Goals.Streak)

			goals.POST("/:id/progress", h.Goals.AddProgress)
			goals.GET("/:id/progress", h.Goals.ListProgress)
			goals.POST("/:id/milestones", h.Goals.AddMilestone)
			goals.GET("/:id/milestones", h.Goals.ListMilestones)
			goals.POST("/:id/obstacles", h.Goals.AddObstacle)
			goals.GET("/:id/obstacles", h.Goals.ListObstacles)

			goals.POST("/:id/tasks", h.Tasks.CreateActionItem)
			goals.GET("/:id/tasks", h.Tasks.ListActionItems)

			goals.GET("/:id/reflections/status", h.Reflections.Status)
			goals.POST("/:id/reflections", h.Reflections.Submit)
			goals.GET("/:id/reflections", h.Reflections.List)

			goals.POST("/:id/nudges", h.Guardians.SendNudge)
		}

		protected.POST("/milestones/:id/achieve", h.Goals.AchieveMilestone)

		tasks := protected.Group("/tasks")
		{
			tasks.GET("/scheduled", h.Tasks.ListScheduled)
			tasks.GET("/:id", h.Tasks.GetActionItem)
			tasks.DELETE("/:id", h.Tasks.DeleteActionItem)
			tasks.POST("/:id/schedule", h.Tasks.GenerateSchedule)
			tasks.POST("/:id/complete", h.Tasks.CompleteTask)
			tasks.GET("/:id/completions", h.Tasks.ListCompletions)
			tasks.GET("/:id/streak", h.Tasks.Streak)
			tasks.POST("/:id/slots", h.Tasks.CreateSlot)
			tasks.GET("/:id/slots", h.Tasks.ListSlots)
			tasks.GET("/:id/slots/active", h.Tasks.ActiveSlot)
		}

		protected.POST("/slots/:id/reschedule", h.Tasks.Reschedule)

		streaks := protected.Group("/streaks")
		{
			streaks.GET("", h.Streaks.UserStreak)
			streaks.GET("/all", h.Streaks.ListStreaks)
			streaks.POST("/shield", h.Streaks.ApplyShield)
		}

		protected.POST("/journal", h.Reflections.CreateJournalEntry)
		protected.GET("/journal", h.Reflections.ListJournal)

		guardians := protected.Group("/guardians")
		{
			guardians.GET("", h.Guardians.List)
			guardians.POST("/:id/accept", h.Guardians.Accept)
			guardians.POST("/:id/revoke", h.Guardians.Revoke)
			guardians.POST("", middleware.RequireEntitlement(guards.Entitlements, usecase.Requirement{Tier: model.TierPremium}), h.Guardians.Invite)
		}
		protected.GET("/nudges", h.Guardians.ListNudges)

		protected.GET("/subscription", h.Subscriptions.Entitlement)
		protected.GET("/purchases", h.Subscriptions.Purchases)
	}
}
