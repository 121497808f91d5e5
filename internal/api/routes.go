package api

import (
	"net/http"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/metrics"
	"courtside/team-ops/internal/service"
	"courtside/team-ops/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RetryStatus reports the state of the cascade retry queue.
type RetryStatus interface {
	Status() map[string]interface{}
}

// Services are the handlers' dependencies.
type Services struct {
	Auth     service.AuthService
	Sessions service.SessionService
	Practice service.PracticeService
	Surveys  service.SurveyService
	Wellness service.WellnessService
	Roster   service.RosterService
	Plans    service.PlanService
	Games    service.GameService
	Reports  service.ReportService
	Hub      *syncer.Hub
	Retry    RetryStatus
}

func SetupRoutes(router *gin.Engine, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	scheduleHandler := NewScheduleHandler(svc.Sessions)
	practiceHandler := NewPracticeHandler(svc.Practice, svc.Hub)
	surveyHandler := NewSurveyHandler(svc.Surveys)
	wellnessHandler := NewWellnessHandler(svc.Wellness)
	rosterHandler := NewRosterHandler(svc.Roster)
	gymHandler := NewGymHandler(svc.Plans)
	gameHandler := NewGameHandler(svc.Games)
	reportHandler := NewReportHandler(svc.Reports)

	router.Use(metrics.Middleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role, "playerId": c.GetString(ContextPlayerIDKey)})
		})

		// --- Player and coach routes ---
		protected.GET("/schedule", scheduleHandler.List)
		protected.POST("/survey/:sessionId", surveyHandler.Submit(domain.SurveyCourt))
		protected.POST("/gym-survey/:sessionId", surveyHandler.Submit(domain.SurveyGym))
		protected.POST("/wellness/survey", wellnessHandler.Submit)

		// --- Coach routes ---
		coach := protected.Group("")
		coach.Use(RoleMiddleware(domain.RoleCoach))
		{
			coach.POST("/schedule", scheduleHandler.Create)
			coach.GET("/schedule/:sessionId", scheduleHandler.Get)
			coach.PATCH("/schedule/:sessionId", scheduleHandler.Update)
			coach.DELETE("/schedule/:sessionId", scheduleHandler.Delete)

			practiceGroup := coach.Group("/practice/:sessionId")
			{
				practiceGroup.GET("", practiceHandler.Get)
				practiceGroup.PUT("/drills", practiceHandler.SaveDrills)
				practiceGroup.PUT("/attendance/:playerId", practiceHandler.SetAttendance)
				practiceGroup.POST("/flush", practiceHandler.Flush)
				practiceGroup.GET("/events", practiceHandler.Events)
			}

			coach.POST("/survey/:sessionId/open", surveyHandler.Open(domain.SurveyCourt))
			coach.GET("/survey/:sessionId", surveyHandler.Results(domain.SurveyCourt))
			coach.POST("/gym-survey/:sessionId/open", surveyHandler.Open(domain.SurveyGym))
			coach.GET("/gym-survey/:sessionId", surveyHandler.Results(domain.SurveyGym))

			coach.GET("/wellness", wellnessHandler.Day)
			coach.GET("/wellness/range", wellnessHandler.Range)

			coach.GET("/rpe-report", reportHandler.RPE)
			reportGroup := coach.Group("/reports")
			{
				reportGroup.GET("/practice/:sessionId", reportHandler.Practice())
				reportGroup.GET("/pre-practice/:sessionId", reportHandler.PrePractice())
				reportGroup.GET("/game/:sessionId", reportHandler.Game())
				reportGroup.GET("/gym-plan/:planId", reportHandler.GymPlan)
				reportGroup.POST("/:kind/export", reportHandler.Export)
			}

			coach.GET("/roster", rosterHandler.List)
			coach.POST("/roster", rosterHandler.Create)
			coach.PATCH("/roster/:playerId", rosterHandler.Update)
			coach.DELETE("/roster/:playerId", rosterHandler.Delete)

			gymGroup := coach.Group("/gym")
			{
				gymGroup.GET("/plans", gymHandler.ListPlans)
				gymGroup.POST("/plans", gymHandler.CreatePlan)
				gymGroup.GET("/plans/:planId", gymHandler.GetPlan)
				gymGroup.PATCH("/plans/:planId", gymHandler.UpdatePlan)
				gymGroup.DELETE("/plans/:planId", gymHandler.DeletePlan)
				gymGroup.POST("/plans/:planId/archive", gymHandler.ArchivePlan)
				gymGroup.POST("/plans/:planId/duplicate", gymHandler.DuplicatePlan)
				gymGroup.GET("/folders", gymHandler.ListFolders)
				gymGroup.POST("/folders", gymHandler.CreateFolder)
				gymGroup.DELETE("/folders/:folderId", gymHandler.DeleteFolder)
			}

			gameGroup := coach.Group("/games/:sessionId")
			{
				gameGroup.GET("", gameHandler.Snapshot())
				gameGroup.POST("/toggle", gameHandler.Toggle())
				gameGroup.POST("/players/:playerId/in", gameHandler.PutIn())
				gameGroup.POST("/players/:playerId/out", gameHandler.TakeOut())
				gameGroup.POST("/halftime", gameHandler.HalfTime())
				gameGroup.POST("/reset", gameHandler.Reset())
			}

			if svc.Retry != nil {
				coach.GET("/admin/retry", func(c *gin.Context) {
					c.JSON(http.StatusOK, svc.Retry.Status())
				})
			}
		}
	}
}
