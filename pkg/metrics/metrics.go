// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exposes a device's reader state as Prometheus gauges,
// the same MustNewConstMetric/PedanticRegistry pattern
// cmd/tcgdiskstat/metric.go used for drive/locking state.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/raidlog/raidlog/pkg/reader"
)

var (
	descHead = prometheus.NewDesc(
		"raidlog_head_sector",
		"Next-free logical sector reported by the supersector",
		[]string{"device"}, nil,
	)
	descRecords = prometheus.NewDesc(
		"raidlog_records_total",
		"Number of logical data sectors covered by the current head",
		[]string{"device"}, nil,
	)
	descCorrupted = prometheus.NewDesc(
		"raidlog_corrupted_sectors",
		"Number of logical sectors where no mirror copy verified its CRC",
		[]string{"device"}, nil,
	)
	descMirrors = prometheus.NewDesc(
		"raidlog_mirrors",
		"Configured mirror count",
		[]string{"device"}, nil,
	)
)

type collector struct {
	device  string
	records []reader.Record
	meta    reader.MetaRecord
	mirrors int
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	corrupted := 0
	for _, r := range c.records {
		if r.Status == reader.CRCFail {
			corrupted++
		}
	}
	ch <- prometheus.MustNewConstMetric(descHead, prometheus.GaugeValue, float64(c.meta.Head), c.device)
	ch <- prometheus.MustNewConstMetric(descRecords, prometheus.GaugeValue, float64(len(c.records)), c.device)
	ch <- prometheus.MustNewConstMetric(descCorrupted, prometheus.GaugeValue, float64(corrupted), c.device)
	ch <- prometheus.MustNewConstMetric(descMirrors, prometheus.GaugeValue, float64(c.mirrors), c.device)
}

// WriteOpenMetrics renders records/meta for device to w in the Prometheus
// text exposition format (expfmt.MetricFamilyToText).
func WriteOpenMetrics(w io.Writer, device string, mirrors int, records []reader.Record, meta reader.MetaRecord) error {
	c := &collector{device: device, records: records, meta: meta, mirrors: mirrors}
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		return err
	}
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
