package metrics

import "github.com/prometheus/client_golang/prometheus"

// MessagingMetrics exposes counters/histograms for outbound SMS delivery.
type MessagingMetrics struct {
	sendTotal   *prometheus.CounterVec
	sendLatency *prometheus.HistogramVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		sendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laundry",
			Subsystem: "messaging",
			Name:      "send_total",
			Help:      "Total outbound SMS sends",
		}, []string{"provider", "status"}),
		sendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "laundry",
			Subsystem: "messaging",
			Name:      "send_latency_seconds",
			Help:      "Latency of provider send calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sendTotal, m.sendLatency)
	return m
}

func (m *MessagingMetrics) ObserveSend(provider, status string) {
	if m == nil {
		return
	}
	m.sendTotal.WithLabelValues(provider, status).Inc()
}

func (m *MessagingMetrics) ObserveSendLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.sendLatency.WithLabelValues(provider).Observe(seconds)
}

// OrderMetrics counts pickup order submissions by outcome.
type OrderMetrics struct {
	ordersTotal *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		ordersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laundry",
			Subsystem: "orders",
			Name:      "pickup_total",
			Help:      "Total pickup order submissions",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.ordersTotal)
	return m
}

func (m *OrderMetrics) ObserveOrder(outcome string) {
	if m == nil {
		return
	}
	m.ordersTotal.WithLabelValues(outcome).Inc()
}
