package alloc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts allocator traffic.
type Metrics struct {
	Allocs   prometheus.Counter
	Reallocs prometheus.Counter
	Frees    prometheus.Counter
	Bytes    prometheus.Counter
	Failures prometheus.Counter
}

// NewMetrics creates unregistered counters under namespace_alloc_*.
func NewMetrics(namespace string) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alloc",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		Allocs:   counter("allocs_total", "Total number of buffer allocations"),
		Reallocs: counter("reallocs_total", "Total number of buffer reallocations"),
		Frees:    counter("frees_total", "Total number of buffers returned"),
		Bytes:    counter("bytes_total", "Total bytes requested by Alloc and Realloc"),
		Failures: counter("failures_total", "Total number of failed requests"),
	}
}

// Register adds every counter to reg. Counters that are already registered
// are left alone.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Allocs, m.Reallocs, m.Frees, m.Bytes, m.Failures} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Instrument wraps a so that every call is counted in m.
func Instrument(a Allocator, m *Metrics) Allocator {
	return &instrumented{a: a, m: m}
}

type instrumented struct {
	a Allocator
	m *Metrics
}

func (i *instrumented) Alloc(n int) ([]byte, error) {
	i.m.Allocs.Inc()
	b, err := i.a.Alloc(n)
	if err != nil {
		i.m.Failures.Inc()
		return nil, err
	}
	i.m.Bytes.Add(float64(n))
	return b, nil
}

func (i *instrumented) Realloc(b []byte, n int) ([]byte, error) {
	i.m.Reallocs.Inc()
	nb, err := i.a.Realloc(b, n)
	if err != nil {
		i.m.Failures.Inc()
		return nil, err
	}
	i.m.Bytes.Add(float64(n))
	return nb, nil
}

func (i *instrumented) Free(b []byte) {
	i.m.Frees.Inc()
	i.a.Free(b)
}
