package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analysisCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_analyses",
	Help: "Number of messages analyzed, by resulting risk level",
}, []string{"risk"})

var analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "guardian_analysis_duration_sec",
	Help: "Total duration of message analysis",
})

var analysisErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guardian_analysis_errors",
	Help: "Number of analyses which failed on a store error",
})

var signalFailCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guardian_signal_failures",
	Help: "Number of external classifier calls replaced by the neutral signal",
})
