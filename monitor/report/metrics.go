/*
DESCRIPTION
  metrics.go provides a Reporter that exports statistics as Prometheus
  metrics.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ausocean/tsmon/monitor"
)

const namespace = "tsmon"

// Metrics updates Prometheus counters and gauges once per record.
type Metrics struct {
	packets     prometheus.Counter
	dataPackets prometheus.Counter
	ccErrors    prometheus.Counter
	syncErrors  prometheus.Counter
	teiErrors   prometheus.Counter

	bitrate     prometheus.Gauge
	dataBitrate prometheus.Gauge
	services    prometheus.Gauge
}

// NewMetrics returns a Metrics reporter with its collectors registered
// with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	m := &Metrics{
		packets:     counter("packets_total", "Transport units received, including invalid and null units."),
		dataPackets: counter("data_packets_total", "Valid transport units other than null units."),
		ccErrors:    counter("cc_errors_total", "Continuity counter errors."),
		syncErrors:  counter("sync_errors_total", "Units with a bad sync byte or adaptation field."),
		teiErrors:   counter("tei_errors_total", "Units with the transport error indicator set."),
		bitrate:     gauge("bitrate_bits_per_second", "Bitrate of all units over the last period."),
		dataBitrate: gauge("data_bitrate_bits_per_second", "Bitrate of data units over the last period."),
		services:    gauge("services", "Services known to the monitor."),
	}
	for _, c := range []prometheus.Collector{
		m.packets, m.dataPackets, m.ccErrors, m.syncErrors, m.teiErrors,
		m.bitrate, m.dataBitrate, m.services,
	} {
		err := reg.Register(c)
		if err != nil {
			return nil, fmt.Errorf("could not register metric: %w", err)
		}
	}
	return m, nil
}

// Report adds the period's counts and sets the gauges.
func (m *Metrics) Report(r monitor.Record) error {
	m.packets.Add(float64(r.Delta.Packets))
	m.dataPackets.Add(float64(r.Delta.DataPackets))
	m.ccErrors.Add(float64(r.Delta.CCErrors))
	m.syncErrors.Add(float64(r.Delta.SyncErrors))
	m.teiErrors.Add(float64(r.Delta.TEIErrors))
	m.bitrate.Set(r.Bitrate)
	m.dataBitrate.Set(r.DataBitrate)
	m.services.Set(float64(r.Services))
	return nil
}

// Finish zeroes the bitrate gauges.
func (m *Metrics) Finish(monitor.Summary) error {
	m.bitrate.Set(0)
	m.dataBitrate.Set(0)
	return nil
}
