package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/RichardKnop/ragchat"
)

// Adapter records pipeline and HTTP metrics. It implements ragchat.Observer.
type Adapter struct {
	answersTotal        *prometheus.CounterVec
	answerDuration      *prometheus.HistogramVec
	retrievedDocuments  *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

const defaultNamespace = "ragchat"

// New registers the collectors with registerer. Registering twice with the same registerer
// panics.
func New(registerer prometheus.Registerer) *Adapter {
	factory := promauto.With(registerer)

	return &Adapter{
		answersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: defaultNamespace,
				Name:      "answers_total",
				Help:      "Total number of answered queries by outcome",
			},
			[]string{"model", "retriever", "outcome"},
		),
		answerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: defaultNamespace,
				Name:      "answer_duration_seconds",
				Help:      "Time to answer a query, retrieval and generation included",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"model", "retriever"},
		),
		retrievedDocuments: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: defaultNamespace,
				Name:      "retrieved_documents",
				Help:      "Number of context documents returned per retrieval",
				Buckets:   prometheus.LinearBuckets(0, 1, 11),
			},
			[]string{"retriever"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: defaultNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: defaultNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (a *Adapter) ObserveAnswer(modelLabel, retrieverLabel string, outcome ragchat.Outcome, elapsed time.Duration) {
	a.answersTotal.WithLabelValues(modelLabel, retrieverLabel, string(outcome)).Inc()
	if outcome == ragchat.OutcomeSuccess {
		a.answerDuration.WithLabelValues(modelLabel, retrieverLabel).Observe(elapsed.Seconds())
	}
}

func (a *Adapter) ObserveRetrieval(retrieverLabel string, documents int) {
	a.retrievedDocuments.WithLabelValues(retrieverLabel).Observe(float64(documents))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware counts requests per route template so path parameters do not blow up label
// cardinality.
func (a *Adapter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		a.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		a.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(started).Seconds())
	})
}
