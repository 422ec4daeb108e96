package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/realtime"
	httpHandler "github.com/Marc02130/tiktaik-sub000/interfaces/http"
	"github.com/Marc02130/tiktaik-sub000/interfaces/middleware"
)

func InitiateRouter(
	feedHandler httpHandler.IFeedHandler,
	feedHub *realtime.Hub,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "https://localhost:4200", "http://localhost:8100"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))
	api.Use(middleware.RateLimit(rate.Limit(10), 20))

	api.GET("/feed", feedHandler.GetFeed)
	if feedHub != nil {
		api.GET("/feed/stream", feedHub.Serve)
	}

	return router
}
