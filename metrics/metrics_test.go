package metrics

import (
	"os"
	"testing"

	"mailcast/objects"

	"github.com/stretchr/testify/assert"
)

func TestMetricsInit(t *testing.T) {
	// Set test environment to use different port
	os.Setenv("METRICS_PORT", "8082")
	defer os.Unsetenv("METRICS_PORT")

	// Test that metrics initialization works
	err := Init()
	assert.NoError(t, err, "Metrics initialization should not fail")
	assert.True(t, IsEnabled(), "Metrics should be enabled by default")
}

func TestRecordNewUser(t *testing.T) {
	// Set test environment to disable metrics server for this test
	os.Setenv("METRICS_ENABLED", "true")
	os.Setenv("METRICS_PORT", "8083")
	defer os.Unsetenv("METRICS_ENABLED")
	defer os.Unsetenv("METRICS_PORT")

	Init()

	// Test recording new user metric
	RecordNewUser()
	RecordNewUser()

	// Test passes if no panic occurs
	assert.True(t, true, "Recording metrics should not cause errors")
}

func TestRecordUserActivity(t *testing.T) {
	RecordUserActivity("start")
	RecordUserActivity("message")

	assert.True(t, true, "Recording user activity should not cause errors")
}

func TestRecordCommand(t *testing.T) {
	RecordCommand("/start", "new")
	RecordCommand("/admin", "admin")

	assert.True(t, true, "Recording commands should not cause errors")
}

func TestRecordBroadcastMetrics(t *testing.T) {
	RecordBroadcastDelivery("text", "all", "sent")
	RecordBroadcastDelivery("photo", "active_week", "failed")
	RecordBroadcastRun("all", false)
	RecordBroadcastRun("new_today", true)

	assert.True(t, true, "Recording broadcast metrics should not cause errors")
}

func TestRecordMenuTransition(t *testing.T) {
	RecordMenuTransition(objects.Menu_Idle, objects.Menu_CollectingTitle)
	RecordMenuTransition(objects.Menu_Confirming, objects.Menu_Idle)

	assert.True(t, true, "Recording menu transitions should not cause errors")
}

func TestMetricsConfiguration(t *testing.T) {
	// Test metrics configuration
	os.Setenv("METRICS_ENABLED", "false")
	defer os.Unsetenv("METRICS_ENABLED")

	// Reinitialize with disabled metrics
	err := Init()
	assert.NoError(t, err, "Init should work even when disabled")
	assert.False(t, IsEnabled(), "Metrics should be disabled when METRICS_ENABLED=false")

	// Test recording when disabled (should not panic)
	RecordNewUser()
	RecordUserActivity("test")
	RecordCommand("/test", "new")
	RecordTelegramMessage("regular", "sent", "none")
	RecordRabbitMQMessage("published", "messages", true)
	RecordReportGenerated(true)

	assert.True(t, true, "Recording metrics when disabled should not cause errors")
}

func TestGetMetricsSummary(t *testing.T) {
	// Set test environment
	os.Setenv("METRICS_ENABLED", "true")
	os.Setenv("METRICS_PORT", "8084")
	defer os.Unsetenv("METRICS_ENABLED")
	defer os.Unsetenv("METRICS_PORT")

	// Reinitialize with test config
	Init()

	// Test metrics summary function
	summary := GetMetricsSummary()

	assert.NotNil(t, summary, "Summary should not be nil")
	assert.True(t, summary["enabled"].(bool), "Metrics should be enabled")
	assert.Equal(t, "/metrics", summary["endpoint"], "Endpoint should be /metrics")
	assert.Equal(t, 8084, summary["port"], "Port should be 8084")
}
