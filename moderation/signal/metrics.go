package signal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifierAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_classifier_api",
	Help: "Number of classifier API calls, by HTTP status code",
}, []string{"status"})

var classifierAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "guardian_classifier_api_duration_sec",
	Help: "Duration of classifier API calls",
})
