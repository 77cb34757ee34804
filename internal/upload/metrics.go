package upload

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess   = "success"
	resultFailure   = "failure"
	resultDiscarded = "discarded"
	resultExpired   = "expired"
)

// Metrics tracks per-file and per-batch upload outcomes.
type Metrics struct {
	files   *prometheus.CounterVec
	batches *prometheus.CounterVec
}

// NewMetrics registers the upload metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharetome_upload_files_total",
				Help: "Files sent to the backend by result.",
			},
			[]string{"result"},
		),
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharetome_upload_batches_total",
				Help: "Upload batches by final result.",
			},
			[]string{"result"},
		),
	}
	for _, c := range []prometheus.Collector{m.files, m.batches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeFile(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.files.WithLabelValues(resultFailure).Inc()
		return
	}
	m.files.WithLabelValues(resultSuccess).Inc()
}

func (m *Metrics) observeBatch(result string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(result).Inc()
}
