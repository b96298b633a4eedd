// Package httpserver exposes a Dispatcher over HTTP: one route,
// POST /v1/:command/:key, whose body is a sequence of length-prefixed
// parameter frames (see pkg/frame) and whose response is a status byte
// plus payload in the same framing. The middleware stack (recovery,
// CORS, structured request logging, a concurrency cap) is carried
// straight from the teacher's cmd/zmux-server/main.go and
// internal/http/middleware, generalized only where the route itself
// changes; session/CSRF/auth middleware has no analogue in this domain
// and is deliberately not wired in here.
package httpserver

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edirooss/lodis/internal/dispatcher"
	"github.com/edirooss/lodis/internal/http/middleware"
	"github.com/edirooss/lodis/pkg/frame"
)

// Options configures New.
type Options struct {
	Dev            bool
	MaxConcurrent  int
	MaxBodyBytes   int64
	TrustedProxies []string
}

// ZapLogger is a Gin middleware that logs every request through log,
// carried over from the teacher's cmd/zmux-server/main.go.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		var errs []error
		for _, ge := range c.Errors {
			if ge.Err != nil {
				errs = append(errs, ge.Err)
			}
		}
		joinedErr := errors.Join(errs...)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Duration("latency", latency),
		}
		if joinedErr != nil {
			fields = append(fields, zap.Error(joinedErr))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// New builds the gin router serving d.
func New(d *dispatcher.Dispatcher, log *zap.Logger, opts Options) *gin.Engine {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 256
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 16 * 1024 * 1024
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	_ = r.SetTrustedProxies(opts.TrustedProxies)

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	if opts.Dev {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(secure.New(secure.Config{
			STSSeconds:           31536000,
			STSIncludeSubdomains: true,
			FrameDeny:            true,
			ContentTypeNosniff:   true,
			BrowserXssFilter:     true,
		}))
	}

	r.Use(ZapLogger(log))
	r.Use(middleware.CapConcurrentRequests(opts.MaxConcurrent))

	r.POST("/v1/:command/:key", handleExecute(d, opts.MaxBodyBytes))

	return r
}

func handleExecute(d *dispatcher.Dispatcher, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmd := dispatcher.Command(c.Param("command"))
		key := c.Param("key")

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			_ = c.Error(err)
			c.Data(http.StatusRequestEntityTooLarge, "application/octet-stream", nil)
			return
		}

		params, err := frame.ParseParams(body)
		if err != nil {
			_ = c.Error(err)
			w := frame.NewWriter(frame.StatusFor(err))
			c.Data(http.StatusOK, "application/octet-stream", w.Bytes())
			return
		}

		resp, err := d.Execute(cmd, []byte(key), params)
		if err != nil {
			_ = c.Error(err)
		}
		c.Data(http.StatusOK, "application/octet-stream", resp)
	}
}
