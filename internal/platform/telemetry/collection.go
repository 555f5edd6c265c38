package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// CollectionMetrics exposes the size of the quote collection and counts
// committed mutations by operation.
type CollectionMetrics struct {
	quotes    prometheus.Gauge
	mutations *prometheus.CounterVec
}

// NewCollectionMetrics creates the collection metrics and registers them
// with reg. An already registered collector is reused, so several stores
// in one process share the series.
func NewCollectionMetrics(reg prometheus.Registerer) (*CollectionMetrics, error) {
	quotes := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quotebook",
		Subsystem: "collection",
		Name:      "quotes",
		Help:      "Number of quotes in the loaded collection.",
	})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quotebook",
		Subsystem: "collection",
		Name:      "mutations_total",
		Help:      "Committed collection changes by operation.",
	}, []string{"op"})

	var err error
	if quotes, err = register(reg, quotes); err != nil {
		return nil, err
	}

	if mutations, err = register(reg, mutations); err != nil {
		return nil, err
	}

	return &CollectionMetrics{quotes: quotes, mutations: mutations}, nil
}

// Observe records a committed change. Its signature matches the store's
// change hook.
func (m *CollectionMetrics) Observe(op string, count int) {
	m.quotes.Set(float64(count))
	m.mutations.WithLabelValues(op).Inc()
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return c, err
}
