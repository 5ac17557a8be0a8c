package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		redemptionsTotal,
		codesGeneratedTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_redemptions_total",
			Help: "Redemption attempts by result.",
		},
		[]string{"result"}, // 'success', 'not_found', 'already_used', 'code_expired', 'format_error', 'error'
	)

	codesGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activation_codes_generated_total",
			Help: "Total number of activation codes created by admins.",
		},
	)
)

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func AddCodesGenerated(count int) {
	codesGeneratedTotal.Add(float64(count))
}
