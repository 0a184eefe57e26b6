package telemetry

import "go.opentelemetry.io/otel/metric"

// Metrics holds the stagedocs instruments.
type Metrics struct {
	TreeBuilds      metric.Int64Counter
	TreeErrors      metric.Int64Counter
	TreeDuration    metric.Float64Histogram
	CacheHits       metric.Int64Counter
	CacheMisses     metric.Int64Counter
	ContentKeys     metric.Int64Counter
	RequestDuration metric.Float64Histogram
}

// NewMetrics creates every instrument from meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.TreeBuilds, err = meter.Int64Counter("stagedocs.tree.builds",
		metric.WithDescription("Document trees built"),
	)
	if err != nil {
		return nil, err
	}

	m.TreeErrors, err = meter.Int64Counter("stagedocs.tree.errors",
		metric.WithDescription("Document tree builds that failed"),
	)
	if err != nil {
		return nil, err
	}

	m.TreeDuration, err = meter.Float64Histogram("stagedocs.tree.duration",
		metric.WithDescription("Document tree build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter("stagedocs.cache.hits",
		metric.WithDescription("Tree cache hits"),
	)
	if err != nil {
		return nil, err
	}

	m.CacheMisses, err = meter.Int64Counter("stagedocs.cache.misses",
		metric.WithDescription("Tree cache misses"),
	)
	if err != nil {
		return nil, err
	}

	m.ContentKeys, err = meter.Int64Counter("stagedocs.content.keys",
		metric.WithDescription("File content keys resolved"),
	)
	if err != nil {
		return nil, err
	}

	m.RequestDuration, err = meter.Float64Histogram("stagedocs.http.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NoopMetrics returns instruments that record nothing.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(Noop().Meter)
	return m
}
