// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package telemetry registers the simulator's Prometheus counters and
// gauges against a caller-supplied registry: qubits generated, gates
// applied, measurements performed, and fidelity samples observed.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the simulator's Prometheus surface.
type Metrics struct {
	qubitsGenerated    prometheus.Counter
	gatesApplied       prometheus.Counter
	operationsApplied  prometheus.Counter
	measurements       prometheus.Counter
	partialTraces      prometheus.Counter
	fidelitySamples    prometheus.Histogram
	liveQubits         prometheus.Gauge
}

// New builds and registers a Metrics set against registerer.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		qubitsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qns_qubits_generated_total",
			Help: "Number of qubits generated (pure or mixed).",
		}),
		gatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qns_gates_applied_total",
			Help: "Number of unitary gates applied.",
		}),
		operationsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qns_operations_applied_total",
			Help: "Number of mixed-unitary operations applied.",
		}),
		measurements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qns_measurements_total",
			Help: "Number of projective measurements performed.",
		}),
		partialTraces: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qns_partial_traces_total",
			Help: "Number of qubits removed via partial trace.",
		}),
		fidelitySamples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qns_fidelity_samples",
			Help:    "Distribution of reported fidelity values against the ideal Bell state.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		liveQubits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qns_live_qubits",
			Help: "Number of currently-live (not traced out) qubits.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.qubitsGenerated, m.gatesApplied, m.operationsApplied,
		m.measurements, m.partialTraces, m.fidelitySamples, m.liveQubits,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) QubitsGenerated(n int)  { m.qubitsGenerated.Add(float64(n)); m.liveQubits.Add(float64(n)) }
func (m *Metrics) GateApplied()           { m.gatesApplied.Inc() }
func (m *Metrics) OperationApplied()      { m.operationsApplied.Inc() }
func (m *Metrics) MeasurementPerformed()  { m.measurements.Inc() }
func (m *Metrics) QubitsTraced(n int)     { m.partialTraces.Add(float64(n)); m.liveQubits.Sub(float64(n)) }
func (m *Metrics) FidelitySample(f float64) { m.fidelitySamples.Observe(f) }
