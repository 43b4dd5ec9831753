package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rootly-app/rootly/internal/http/web/handlers"
	"github.com/rootly-app/rootly/internal/ratelimit"
	"github.com/rootly-app/rootly/internal/session"
	log "github.com/sirupsen/logrus"
)

const msgTooManyAttempts = "Too many attempts. Please wait a minute and try again."

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}

// requestMetrics records request counts and latency per route template.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// recovery renders the error page when a handler panics.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		handlers.ServerError(c, fmt.Errorf("panic: %v", recovered))
	})
}

// throttle limits form submissions per client address. When the limit is
// exceeded the form page is rendered again with status 429.
func throttle(limiter *ratelimit.Manager, action, page, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		result, errAllow := limiter.Allow(c.Request.Context(), ratelimit.KeyForClient(action, c.ClientIP()))
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit check failed")
			c.Next()
			return
		}
		if !result.Allowed {
			throttledTotal.WithLabelValues(action).Inc()
			if !result.Reset.IsZero() {
				seconds := int(time.Until(result.Reset).Seconds()) + 1
				if seconds > 0 {
					c.Header("Retry-After", strconv.Itoa(seconds))
				}
			}
			session.Get(c).AddFlash(msgTooManyAttempts)
			handlers.Render(c, http.StatusTooManyRequests, page, gin.H{"Title": title})
			c.Abort()
			return
		}
		c.Next()
	}
}
