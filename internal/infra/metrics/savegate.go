package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(saveGateDenialsTotal) }

var saveGateDenialsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "save_gate_denials_total",
		Help: "Resume save attempts rejected by the entitlement gate.",
	},
	[]string{"reason"}, // 'required', 'expired', 'banned'
)

func IncSaveGateDenial(reason string) {
	saveGateDenialsTotal.WithLabelValues(norm(reason)).Inc()
}
