// Package metrics exposes the command server's counters in Prometheus form.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tcpserver"

// Command labels used by CommandsTotal.
const (
	LabelTime    = "time"
	LabelEcho    = "echo"
	LabelStatus  = "status"
	LabelQuit    = "quit"
	LabelUnknown = "unknown"
)

// Metrics bundles the server collectors with the registry they live in. Each
// server gets its own registry so tests can run several servers side by side.
type Metrics struct {
	registry *prometheus.Registry

	ConnectionsTotal  prometheus.Counter
	ActiveConnections prometheus.Gauge
	CommandsTotal     *prometheus.CounterVec
	ConnectionErrors  prometheus.Counter
	AcceptErrors      prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Connections accepted since start.",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Connections currently being handled.",
		}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command.",
		}, []string{"command"}),
		ConnectionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Connections terminated by an I/O error.",
		}),
		AcceptErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_errors_total",
			Help:      "Failed accept calls while the server was running.",
		}),
	}
}

// Registry returns the gatherer backing the exporter.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveCommand(label string) {
	m.CommandsTotal.WithLabelValues(label).Inc()
}
