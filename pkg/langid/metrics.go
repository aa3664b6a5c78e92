package langid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myanlang_classifications_total",
			Help: "Total number of language classification requests by outcome",
		},
		[]string{"outcome"},
	)

	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myanlang_detections_total",
			Help: "Total number of language detections by deciding source and language",
		},
		[]string{"source", "language"},
	)

	modelLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myanlang_model_loads_total",
			Help: "Total number of model load attempts by result",
		},
		[]string{"result"},
	)

	modelReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "myanlang_model_ready",
			Help: "1 once the classification model is loaded",
		},
	)
)
