package metrics

import (
	"fmt"
	"log"
	"mailcast/objects"

	"github.com/VictoriaMetrics/metrics"
)

// RecordMenuTransition records admin menu state transitions using numeric menu IDs
func RecordMenuTransition(fromState, toState objects.MenuId) {
	if !IsEnabled() {
		return
	}

	// Use numeric menu IDs as strings for labels
	fromStateStr := fmt.Sprintf("%d", fromState)
	toStateStr := fmt.Sprintf("%d", toState)

	// VictoriaMetrics/metrics API: include labels in metric name
	metricName := `mailcast_menu_transitions_total{from_state="` + fromStateStr + `",to_state="` + toStateStr + `"}`
	counter := metrics.GetOrCreateCounter(metricName)
	counter.Inc()
	log.Printf("[METRICS] Menu transition: from=%s, to=%s", fromStateStr, toStateStr)
}
