package notify

import "github.com/prometheus/client_golang/prometheus"

// result label values
const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultDropped = "dropped"
	resultRetried = "retried"
)

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "notifications_total", Help: "Booking email notifications by outcome"},
	[]string{"event", "result"},
)

func init() { prometheus.MustRegister(notificationsTotal) }
