package viewmodel

import "github.com/prometheus/client_golang/prometheus"

// Metrics conta intents e respostas descartadas por estarem obsoletas
type Metrics struct {
	Intents        *prometheus.CounterVec
	StaleDiscarded prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "games_viewmodel_intents_total",
			Help: "intents recebidas pela tela de jogos",
		}, []string{"intent"}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "games_viewmodel_stale_discarded_total",
			Help: "respostas descartadas porque uma intent mais nova já foi aplicada",
		}),
	}
	reg.MustRegister(m.Intents, m.StaleDiscarded)
	return m
}
