package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
	"github.com/noah-isme/accompaniment-planner-api/pkg/response"
)

var errTooManyRequests = appErrors.New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests, slow down")

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles each caller, keyed by token subject or client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
	logger   *zap.Logger
}

// NewRateLimiter allows perMinute requests per caller with the given burst.
func NewRateLimiter(perMinute, burst int, logger *zap.Logger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 120
	}
	if burst <= 0 {
		burst = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idle:     10 * time.Minute,
		logger:   logger,
	}
}

func (l *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}
	return entry.limiter
}

// Middleware rejects callers that exceed their allowance with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if value, ok := c.Get(ContextUserKey); ok {
			if claims, ok := value.(*models.JWTClaims); ok && claims.UserID != "" {
				key = "user:" + claims.UserID
			}
		}
		if !l.get(key, time.Now()).Allow() {
			l.logger.Warn("rate limit exceeded", zap.String("caller", key), zap.String("path", c.FullPath()))
			response.Error(c, errTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
