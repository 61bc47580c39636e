package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NewAlertFailedSubmission = func(bridge string) *prometheus.GaugeVec {
		return promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "alert",
			Subsystem:   "relay",
			Name:        "failed_submission",
			Help:        "Shows deposits whose relay was abandoned after exhausting the attempt budget.",
			ConstLabels: prometheus.Labels{"bridge_id": bridge},
		}, []string{"direction", "deposit_hash", "recipient", "value", "attempts"})
	}
	NewAlertStuckSubmission = func(bridge string) *prometheus.GaugeVec {
		return promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "alert",
			Subsystem:   "relay",
			Name:        "stuck_submission",
			Help:        "Shows deposits that stay in the pending state for too long.",
			ConstLabels: prometheus.Labels{"bridge_id": bridge},
		}, []string{"direction", "deposit_hash", "attempts"})
	}
)
