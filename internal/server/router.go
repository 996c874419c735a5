package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lingovia/lingovia-backend/internal/handlers"
	"github.com/lingovia/lingovia-backend/internal/middleware"
)

type RouterConfig struct {
	IdentityMiddleware  *middleware.IdentityMiddleware
	ProgressHandler     *handlers.ProgressHandler
	LessonHandler       *handlers.LessonHandler
	EconomyHandler      *handlers.EconomyHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	LeaderboardHandler  *handlers.LeaderboardHandler
	AudioHandler        *handlers.AudioHandler

	// StaticMediaRoot serves locally stored audio when set.
	StaticMediaRoot string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", handlers.HealthCheck)

	if cfg.StaticMediaRoot != "" {
		router.Static("/audio", cfg.StaticMediaRoot+"/audio")
	}

	api := router.Group("/api/v1")
	api.Use(cfg.IdentityMiddleware.RequireIdentity())

	api.GET("/courses", cfg.ProgressHandler.ListCourses)
	api.GET("/leaderboard", cfg.LeaderboardHandler.GetTopUsers)

	me := api.Group("/me")
	{
		me.GET("/progress", cfg.ProgressHandler.GetUserProgress)
		me.POST("/progress/active-course", cfg.ProgressHandler.SetActiveCourse)
		me.GET("/units", cfg.ProgressHandler.GetUnits)
		me.GET("/course-progress", cfg.ProgressHandler.GetCourseProgress)
		me.GET("/lesson", cfg.LessonHandler.GetLesson)
		me.GET("/lesson/:id", cfg.LessonHandler.GetLesson)
		me.GET("/lesson-percentage", cfg.LessonHandler.GetLessonPercentage)
		me.POST("/challenges/:id/correct", cfg.EconomyHandler.CorrectAnswer)
		me.POST("/challenges/:id/wrong", cfg.EconomyHandler.WrongAnswer)
		me.POST("/hearts/refill", cfg.EconomyHandler.RefillHearts)
		me.POST("/subscription", cfg.SubscriptionHandler.Purchase)
		me.GET("/subscription", cfg.SubscriptionHandler.Get)
	}

	api.POST("/audio/resolve", cfg.AudioHandler.ResolveAudio)

	return router
}

func allowedOrigins() []string {
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		parts := strings.Split(raw, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			return origins
		}
	}
	return []string{
		"http://localhost:80",
		"http://localhost:3000",
		"http://localhost:5173",
	}
}
