package health

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

var (
	analysesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meshscope_analyses_total",
			Help: "Total number of completed analysis passes",
		},
	)

	analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meshscope_analysis_duration_seconds",
			Help:    "Analysis pass duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	activeProblems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meshscope_problems_active",
			Help: "Active problems by severity",
		},
		[]string{"severity"},
	)

	healthScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meshscope_health_score",
			Help: "Overall network health score (0-100)",
		},
	)
)

func init() {
	prometheus.MustRegister(analysesTotal)
	prometheus.MustRegister(analysisDuration)
	prometheus.MustRegister(activeProblems)
	prometheus.MustRegister(healthScore)
}

// ObservePass updates the metrics after one analysis pass.
func ObservePass(problems []model.NetworkProblem, score float64, durationSeconds float64) {
	analysesTotal.Inc()
	analysisDuration.Observe(durationSeconds)
	healthScore.Set(score)

	counts := map[model.ProblemSeverity]float64{
		model.SeverityInfo:     0,
		model.SeverityWarning:  0,
		model.SeverityError:    0,
		model.SeverityCritical: 0,
	}
	for _, p := range problems {
		if p.Active() {
			counts[p.Severity]++
		}
	}
	for sev, n := range counts {
		activeProblems.WithLabelValues(string(sev)).Set(n)
	}
}
