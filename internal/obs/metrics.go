package obs

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	RequestsTotal *prometheus.CounterVec // op, result=success|error|dropped

	DedupHitsTotal     prometheus.Counter
	NotificationsTotal prometheus.Counter
	SubscriptionsLive  prometheus.Gauge

	ReplyLatencyMS *prometheus.HistogramVec // op
}

func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_requests_total",
				Help: "Total datagram requests by operation and result",
			},
			[]string{"op", "result"},
		),
		DedupHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_dedup_hits_total",
			Help: "Total retransmissions answered from the reply cache",
		}),
		NotificationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_notifications_total",
			Help: "Total push notifications sent to monitor subscribers",
		}),
		SubscriptionsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "booking_subscriptions_live",
			Help: "Number of currently live monitor subscriptions",
		}),
		ReplyLatencyMS: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "booking_reply_latency_ms",
				Help:    "Latency from datagram receipt to reply send (ms)",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1ms .. ~2048ms
			},
			[]string{"op"},
		),
	}

	prometheus.MustRegister(
		m.RequestsTotal,
		m.DedupHitsTotal,
		m.NotificationsTotal,
		m.SubscriptionsLive,
		m.ReplyLatencyMS,
	)

	return m
}
