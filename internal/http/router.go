package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"student-compass/internal/metrics"
	"student-compass/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// Con jwtSvc deshabilitado las rutas de usuario quedan abiertas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	assessmentH *AssessmentHandler,
	bookingH *BookingHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, metricas y recovery.
	r.Use(zapLoggerMiddleware(logger), metricsMiddleware(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", userH.Register)
	r.POST("/login", userH.Login)

	auth := r.Group("/auth")
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	protected := []gin.HandlerFunc{}
	if jwtSvc.Enabled() {
		protected = append(protected, JWTAuthMiddleware(jwtSvc))
	}

	assess := r.Group("/assessment")
	assess.GET("/questions", assessmentH.ListQuestions)
	assess.POST("/score", assessmentH.Score)

	sessions := assess.Group("/sessions", protected...)
	sessions.POST("", assessmentH.StartSession)
	sessions.GET("/:id", assessmentH.GetSession)
	sessions.PUT("/:id/answers", assessmentH.AnswerSession)
	sessions.POST("/:id/back", assessmentH.BackSession)
	sessions.POST("/:id/submit", assessmentH.SubmitSession)

	user := r.Group("/user/:id", append(protected, RequireSelf("id"))...)
	user.GET("", userH.GetUser)
	user.GET("/assessment", assessmentH.GetProfile)
	user.POST("/assessment", assessmentH.SubmitAnswers)
	user.PUT("/assessment", assessmentH.SaveProfile)
	user.GET("/bookings", bookingH.ListBookings)

	r.POST("/book", append(protected, bookingH.Book)...)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware etiqueta por ruta registrada (FullPath) para no explotar cardinalidad con ids.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
