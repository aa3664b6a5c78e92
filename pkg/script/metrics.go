package script

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var normalizationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "myanlang_normalizations_total",
		Help: "Total number of script normalizations by outcome",
	},
	[]string{"outcome"},
)
