package translate

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myanlang_translation_requests_total",
			Help: "Total number of translation requests",
		},
		[]string{"engine", "status"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "myanlang_translation_request_duration_seconds",
			Help:    "Duration of translation requests in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"engine", "status"},
	)

	translationRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "myanlang_translation_request_size_bytes",
			Help:    "Size of translation request text in bytes",
			Buckets: []float64{10, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"engine"},
	)

	translationResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "myanlang_translation_response_size_bytes",
			Help:    "Size of translation response text in bytes",
			Buckets: []float64{10, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"engine"},
	)
)

// Instrumented wraps a Translator and records request metrics.
type Instrumented struct {
	Translator
	engine string
}

// NewInstrumented wraps t, labelling its metrics with engine.
func NewInstrumented(t Translator, engine string) *Instrumented {
	return &Instrumented{Translator: t, engine: engine}
}

// Translate implements Translator.
func (i *Instrumented) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	start := time.Now()
	out, err := i.Translator.Translate(ctx, text, sourceLang, targetLang)

	status := "success"
	if err != nil {
		status = "error"
	}
	translationRequestsTotal.WithLabelValues(i.engine, status).Inc()
	translationRequestDuration.WithLabelValues(i.engine, status).Observe(time.Since(start).Seconds())
	translationRequestSize.WithLabelValues(i.engine).Observe(float64(len(text)))
	translationResponseSize.WithLabelValues(i.engine).Observe(float64(len(out)))

	return out, err
}
