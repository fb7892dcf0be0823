package lexicon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// diagnostic only; scoring never reads this back
var langMatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_lexicon_matches",
	Help: "Number of lexicon phrase matches, by language",
}, []string{"language"})
