package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Marc02130/tiktaik-sub000/domain/dto"
)

// RateLimit applies a per-viewer token bucket. Each authenticated viewer
// gets an independent limiter keyed by viewer_id; unauthenticated
// requests share one bucket keyed by client IP.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(rps, burst)
			limiters[key] = limiter
		}
		return limiter
	}

	return func(ctx *gin.Context) {
		key := ctx.GetString("viewer_id")
		if key == "" {
			key = ctx.ClientIP()
		}
		if !limiterFor(key).Allow() {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Res{
				ResponseCode:    "429",
				ResponseMessage: "Too many requests",
			})
			return
		}
		ctx.Next()
	}
}
