package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PostsTotal counts post mutations by action (created, updated, deleted).
	PostsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_posts_total",
			Help: "Total number of post mutations by action",
		},
		[]string{"action"},
	)

	// UploadsTotal counts image uploads by outcome (accepted, rejected).
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_uploads_total",
			Help: "Total number of image uploads by outcome",
		},
		[]string{"outcome"},
	)

	// ImagesSweptTotal counts orphaned images removed by the background sweep.
	ImagesSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_images_swept_total",
			Help: "Total number of orphaned images removed by the sweeper",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, PostsTotal, UploadsTotal, ImagesSweptTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/posts/123 -> /api/posts/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncPosts increments the post mutation counter (created, updated, deleted).
func IncPosts(action string) {
	PostsTotal.WithLabelValues(action).Inc()
}

// IncUploads increments the upload counter (accepted, rejected).
func IncUploads(outcome string) {
	UploadsTotal.WithLabelValues(outcome).Inc()
}

// IncImagesSwept adds n to the swept image counter.
func IncImagesSwept(n int) {
	ImagesSweptTotal.Add(float64(n))
}
