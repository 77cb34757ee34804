package apiclient

import "github.com/prometheus/client_golang/prometheus"

const (
	readAuthenticated = "authenticated"
	readPublic        = "public"
	readFailed        = "failed"
)

// Metrics counts how fallback reads were resolved.
type Metrics struct {
	reads *prometheus.CounterVec
}

// NewMetrics registers the client metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharetome_public_fallback_total",
				Help: "Fallback-capable reads by the path that resolved them.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.reads); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observeRead(outcome string) {
	if m == nil {
		return
	}
	m.reads.WithLabelValues(outcome).Inc()
}
