package metrics

import (
	"log"

	"github.com/VictoriaMetrics/metrics"
)

// RecordNewUser records a new user registration.
// This should only be called when a user runs /start for the first time.
func RecordNewUser() {
	if !IsEnabled() {
		return
	}

	counter := metrics.GetOrCreateCounter(`mailcast_users_new_total`)
	counter.Inc()
	log.Printf("[METRICS] New user registered")
}

// RecordUserActivity records user activity (any tracked interaction)
func RecordUserActivity(actionType string) {
	if !IsEnabled() {
		return
	}

	// VictoriaMetrics/metrics API: include labels in metric name
	metricName := `mailcast_users_active_total{action_type="` + actionType + `"}`
	counter := metrics.GetOrCreateCounter(metricName)
	counter.Inc()
	log.Printf("[METRICS] User activity: action=%s", actionType)
}

// RecordCommand records slash command usage
func RecordCommand(command, userType string) {
	if !IsEnabled() {
		return
	}

	// VictoriaMetrics/metrics API: include labels in metric name
	metricName := `mailcast_slash_commands_total{command="` + command + `",user_type="` + userType + `"}`
	counter := metrics.GetOrCreateCounter(metricName)
	counter.Inc()
	log.Printf("[METRICS] Slash command executed: command=%s, user_type=%s", command, userType)
}
