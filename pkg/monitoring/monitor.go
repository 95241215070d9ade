package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizzesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quizzes_generated_total",
			Help: "Number of quizzes generated and stored",
		},
	)

	QuestionsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_questions_generated_total",
			Help: "Number of quiz questions synthesized",
		},
	)

	AttemptScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_attempt_score_ratio",
			Help:    "Score of submitted quiz attempts",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	WeakAreaRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weak_area_recomputes_total",
			Help: "Weak-area recomputations by outcome",
		},
		[]string{"result"},
	)

	ChatConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_connections",
			Help: "Open chat websocket connections",
		},
	)

	ChatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages by direction",
		},
		[]string{"direction"},
	)
)

// Init registers every collector with the default registry. Call it once at startup.
func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		QuizzesGenerated,
		QuestionsGenerated,
		AttemptScores,
		WeakAreaRecomputes,
		ChatConnections,
		ChatMessages,
	)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
