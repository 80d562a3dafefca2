package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(adminCommandTotal, broadcastMessagesTotal)
}

var (
	adminCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_command_total",
			Help: "Tracks attempts to use admin commands.",
		},
		[]string{"command", "status"}, // status: 'authorized', 'unauthorized'
	)

	broadcastMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_total",
			Help: "Per-recipient broadcast delivery outcomes.",
		},
		[]string{"result"}, // 'success', 'fail'
	)
)

func IncAdminCommand(command, status string) {
	adminCommandTotal.WithLabelValues(norm(command), norm(status)).Inc()
}

func AddBroadcastResults(success, fail int) {
	broadcastMessagesTotal.WithLabelValues("success").Add(float64(success))
	broadcastMessagesTotal.WithLabelValues("fail").Add(float64(fail))
}
