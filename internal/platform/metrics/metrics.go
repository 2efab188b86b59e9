package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	admissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luckydraw_admissions_total",
		Help: "Total de tentativas de entrada no sorteio por resultado",
	}, []string{"status"})

	drawExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luckydraw_draw_executions_total",
		Help: "Total de execucoes de sorteio por resultado",
	}, []string{"status"})

	drawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "luckydraw_draw_duration_seconds",
		Help:    "Tempo entre o compare-and-set e a gravacao do resultado",
		Buckets: prometheus.DefBuckets,
	})

	winnersSelectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luckydraw_winners_selected_total",
		Help: "Ganhadores sorteados por tier",
	}, []string{"tier"})

	claimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luckydraw_claims_total",
		Help: "Resgates de premio por resultado",
	}, []string{"status"})

	entryEventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luckydraw_entry_events_processed_total",
		Help: "Eventos de entrada consumidos pelo worker por resultado",
	}, []string{"status"})
)

func ObserveAdmission(status string) {
	admissionsTotal.WithLabelValues(status).Inc()
}

func ObserveDrawExecution(status string) {
	drawExecutionsTotal.WithLabelValues(status).Inc()
}

func ObserveDrawDuration(seconds float64) {
	drawDuration.Observe(seconds)
}

func AddWinners(tier string, n int) {
	winnersSelectedTotal.WithLabelValues(tier).Add(float64(n))
}

func ObserveClaim(status string) {
	claimsTotal.WithLabelValues(status).Inc()
}

func ObserveEntryEvent(status string) {
	entryEventsProcessedTotal.WithLabelValues(status).Inc()
}
