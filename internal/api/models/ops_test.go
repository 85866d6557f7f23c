package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwise/airwise/internal/api/models"
)

func TestHealthStatus_Worst(t *testing.T) {
	assert.Equal(t, models.HealthStatusOK, models.HealthStatusOK.Worst(models.HealthStatusOK))
	assert.Equal(t, models.HealthStatusDegraded, models.HealthStatusOK.Worst(models.HealthStatusDegraded))
	assert.Equal(t, models.HealthStatusFail, models.HealthStatusDegraded.Worst(models.HealthStatusFail))
	assert.Equal(t, models.HealthStatusFail, models.HealthStatusFail.Worst(models.HealthStatusOK))
}

func TestTimestamp_MarshalsAsUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ts := models.Timestamp(time.Date(2026, 1, 15, 8, 30, 0, 0, ist))

	data, err := json.Marshal(ts)
	require.NoError(t, err)

	assert.Equal(t, `"2026-01-15T03:00:00Z"`, string(data))
}

func TestTimestamp_RoundTrips(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2026-01-15T03:00:00Z"`), &ts))

	assert.Equal(t, time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC), ts.Time())
}

func TestTimestamp_NullLeavesValue(t *testing.T) {
	ts := models.Timestamp(time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC))
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))

	assert.False(t, ts.Time().IsZero())
}

func TestTimestamp_RejectsNonString(t *testing.T) {
	var ts models.Timestamp
	err := json.Unmarshal([]byte(`1736910000`), &ts)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp must be a JSON string")
}
