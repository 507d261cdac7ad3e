package http

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/logger"
	"github.com/hsdfat8/gridops/internal/observability"
)

// RequestIDHeader carries the request correlation id, generated when the client sends none
const RequestIDHeader = "X-Request-ID"

// RouterOptions configures the optional parts of the router
type RouterOptions struct {
	Production  bool
	MetricsPath string // empty disables the metrics endpoint
}

// ginLogger returns a gin.HandlerFunc (middleware) that logs requests using our observability logger
func ginLogger() gin.HandlerFunc {
	log := observability.New("gin-http", "")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		fields := []interface{}{
			"status", statusCode,
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency_ms", latency.Milliseconds(),
			"request_id", requestID,
		}

		if query != "" {
			fields = append(fields, "query", query)
		}

		if errorMessage != "" {
			fields = append(fields, "error", errorMessage)
		}

		if statusCode >= 500 {
			log.Errorw("HTTP request error", fields...)
		} else if statusCode >= 400 {
			log.Warnw("HTTP request warning", fields...)
		} else {
			log.Infow("HTTP request", fields...)
		}
	}
}

// ginRecovery returns a gin.HandlerFunc (middleware) that recovers from panics and logs using our observability logger
func ginRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// ginLogger runs inside this middleware and has already set the id
				log := observability.WithFields("component", "gin-recovery", "request_id", c.Writer.Header().Get(RequestIDHeader))
				log.Errorw("Panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"ip", c.ClientIP(),
					"stack", string(debug.Stack()),
				)

				abortProblem(c, http.StatusInternalServerError, "An unexpected error occurred")
			}
		}()
		c.Next()
	}
}

// ginMetrics records request counts and latency per matched route
func ginMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		logger.HTTPRequestTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		logger.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(service ports.GridService, sessions *SessionManager, opts RouterOptions) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	// Add custom recovery middleware (must be first)
	router.Use(ginRecovery())
	router.Use(ginLogger())
	router.Use(ginMetrics())

	handler := NewHandler(service, sessions)

	router.NoRoute(func(c *gin.Context) {
		writeProblem(c, http.StatusNotFound, "No route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	public := router.Group("/api")
	{
		public.POST("/register", handler.Register)
		public.POST("/login", handler.Login)
		public.POST("/logout", handler.Logout)
	}

	api := router.Group("/api", sessions.requireSession(handler.lookupUser))
	{
		api.GET("/user", handler.CurrentUser)

		admin := api.Group("/users", requireRole(models.RoleAdmin))
		admin.GET("", handler.ListUsers)
		admin.PUT("/:id", handler.UpdateUser)

		api.GET("/equipment", handler.ListEquipment)
		api.GET("/equipment/summary", handler.EquipmentSummary)
		api.GET("/equipment/:id", handler.GetEquipment)
		api.POST("/equipment", handler.CreateEquipment)
		api.PUT("/equipment/:id", handler.UpdateEquipment)
		api.DELETE("/equipment/:id", handler.DeleteEquipment)

		api.GET("/permits", handler.ListPermits)
		api.GET("/permits/:id", handler.GetPermit)
		api.POST("/permits", handler.CreatePermit)
		api.PUT("/permits/:id", handler.UpdatePermit)

		api.GET("/alerts", handler.ListAlerts)
		api.GET("/alerts/:id", handler.GetAlert)
		api.POST("/alerts", handler.CreateAlert)
		api.PUT("/alerts/:id", handler.UpdateAlert)
		api.POST("/alerts/:id/resolve", handler.ResolveAlert)
		api.POST("/alerts/:id/ignore", handler.IgnoreAlert)

		api.GET("/logs", handler.ListActivityLogs)
		api.POST("/logs", handler.RecordActivity)
		api.GET("/logs/analysis", handler.AnalyzeLogs)

		api.GET("/energy/readings", handler.ListEnergyReadings)
		api.POST("/energy/readings", handler.RecordEnergyReading)
		api.GET("/recommendations/energy", handler.RecommendEnergy)
	}

	// Health check
	router.GET("/health", handler.HealthCheck)

	if opts.MetricsPath != "" {
		logger.InitMetrics()
		router.GET(opts.MetricsPath, gin.WrapH(logger.MetricsHandler()))
	}

	return router
}
