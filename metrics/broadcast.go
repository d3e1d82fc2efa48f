package metrics

import (
	"log"
	"strconv"

	"github.com/VictoriaMetrics/metrics"
)

// RecordBroadcastDelivery records one per-recipient dispatch attempt
func RecordBroadcastDelivery(kind, audienceTag, status string) {
	if !IsEnabled() {
		return
	}

	// VictoriaMetrics/metrics API: include labels in metric name
	metricName := `mailcast_broadcast_deliveries_total{kind="` + kind + `",audience="` + audienceTag + `",status="` + status + `"}`
	counter := metrics.GetOrCreateCounter(metricName)
	counter.Inc()
	log.Printf("[METRICS] Broadcast delivery: kind=%s, audience=%s, status=%s", kind, audienceTag, status)
}

// RecordBroadcastRun records a completed dispatch run
func RecordBroadcastRun(audienceTag string, empty bool) {
	if !IsEnabled() {
		return
	}

	metricName := `mailcast_broadcast_runs_total{audience="` + audienceTag + `",empty="` + strconv.FormatBool(empty) + `"}`
	counter := metrics.GetOrCreateCounter(metricName)
	counter.Inc()
	log.Printf("[METRICS] Broadcast run: audience=%s, empty=%t", audienceTag, empty)
}
