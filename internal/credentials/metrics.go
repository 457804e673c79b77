package credentials

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sources reported in davsync_credential_resolutions_total
const (
	SourceCache   = "cache"
	SourceNetrc   = "netrc"
	SourceKeyring = "keyring"
	SourceCommand = "command"
	SourcePrompt  = "prompt"
	SourceFailed  = "failed"
)

var (
	resolutionsTotal  *prometheus.CounterVec
	keyringSavesTotal *prometheus.CounterVec

	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics registers the credential metrics with the default registry.
// Recording before InitMetrics is a no-op.
func InitMetrics() {
	metricsOnce.Do(func() {
		resolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "davsync_credential_resolutions_total",
				Help: "Passwords resolved, by the source that satisfied the request",
			},
			[]string{"source"},
		)

		keyringSavesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "davsync_keyring_saves_total",
				Help: "Prompted passwords persisted to the keyring",
			},
			[]string{"result"},
		)

		metricsRegistered = true
	})
}

// IsMetricsRegistered reports whether InitMetrics has run
func IsMetricsRegistered() bool {
	return metricsRegistered
}

// GetResolutionsTotal returns the resolutions counter, nil before InitMetrics
func GetResolutionsTotal() *prometheus.CounterVec {
	return resolutionsTotal
}

// GetKeyringSavesTotal returns the keyring save counter, nil before InitMetrics
func GetKeyringSavesTotal() *prometheus.CounterVec {
	return keyringSavesTotal
}

func recordResolution(source string) {
	if !metricsRegistered || resolutionsTotal == nil {
		return
	}
	resolutionsTotal.WithLabelValues(source).Inc()
}

func recordKeyringSave(ok bool) {
	if !metricsRegistered || keyringSavesTotal == nil {
		return
	}
	result := "success"
	if !ok {
		result = "error"
	}
	keyringSavesTotal.WithLabelValues(result).Inc()
}
