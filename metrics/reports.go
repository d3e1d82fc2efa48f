package metrics

import (
	"log"
	"strconv"

	"github.com/VictoriaMetrics/metrics"
)

// RecordReportGenerated records an Excel report generation attempt
func RecordReportGenerated(success bool) {
	if !IsEnabled() {
		return
	}

	metricName := `mailcast_reports_generated_total{success="` + strconv.FormatBool(success) + `"}`
	counter := metrics.GetOrCreateCounter(metricName)
	counter.Inc()
	log.Printf("[METRICS] Report generated: success=%t", success)
}
