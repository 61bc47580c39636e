package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LatestHeadBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bridge",
		Subsystem: "relay",
		Name:      "latest_head_block",
		Help:      "Latest head block number seen on the source chain of the direction.",
	}, []string{"bridge_id", "direction"})
	LatestScannedBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bridge",
		Subsystem: "relay",
		Name:      "latest_scanned_block",
		Help:      "Highest source block fully scanned for deposit logs and handed downstream.",
	}, []string{"bridge_id", "direction"})
	PendingConfirmations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bridge",
		Subsystem: "relay",
		Name:      "pending_confirmations",
		Help:      "Number of observed deposit logs still waiting for the confirmation depth.",
	}, []string{"bridge_id", "direction"})
	RelayedDeposits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bridge",
		Subsystem: "relay",
		Name:      "relayed_deposits_total",
		Help:      "Deposits whose mirrored transaction reached the confirmation depth on the destination chain.",
	}, []string{"bridge_id", "direction"})
	FailedDeposits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bridge",
		Subsystem: "relay",
		Name:      "failed_deposits_total",
		Help:      "Deposits abandoned after exhausting the submission attempt budget.",
	}, []string{"bridge_id", "direction"})
	DecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bridge",
		Subsystem: "relay",
		Name:      "decode_errors_total",
		Help:      "Confirmed logs dropped because they could not be decoded as deposits.",
	}, []string{"bridge_id", "direction"})
	ReorgedLogs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bridge",
		Subsystem: "relay",
		Name:      "reorged_logs_total",
		Help:      "Observed deposit logs discarded because their block was reorganized out.",
	}, []string{"bridge_id", "direction"})
)
