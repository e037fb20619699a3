package monitoring

import (
	"github.com/gate33/learn2earn/src/utils/monitoring/report"

	"github.com/prometheus/client_golang/prometheus"
)

// Monitor stores and computes counters exposed by the monitoring server
type Monitor interface {
	GetReport() *report.Report
	GetPrometheusCollector() prometheus.Collector
	Clear()
}
