package fingerprint

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal *prometheus.CounterVec

	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics registers davsync_fingerprint_checks_total. Checks made
// before registration are not counted.
func InitMetrics() {
	metricsOnce.Do(func() {
		checksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "davsync_fingerprint_checks_total",
				Help: "Pinned certificate checks during TLS handshakes",
			},
			[]string{"result"},
		)
		metricsRegistered = true
	})
}

// GetChecksTotal returns the counter, nil before InitMetrics
func GetChecksTotal() *prometheus.CounterVec {
	return checksTotal
}

func recordCheck(ok bool) {
	if !metricsRegistered || checksTotal == nil {
		return
	}
	result := "match"
	if !ok {
		result = "mismatch"
	}
	checksTotal.WithLabelValues(result).Inc()
}
