package models

import (
	"fmt"
	"strconv"
	"time"
)

// HealthStatus grades a component. DEGRADED means the component is
// serving from a fallback path, FAIL means it cannot serve at all.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

var healthSeverity = map[HealthStatus]int{
	HealthStatusOK:       0,
	HealthStatusDegraded: 1,
	HealthStatusFail:     2,
}

// Worst returns the more severe of the two statuses. Aggregate reports
// use it so one broken part grades the whole.
func (s HealthStatus) Worst(other HealthStatus) HealthStatus {
	if healthSeverity[other] > healthSeverity[s] {
		return other
	}
	return s
}

// Timestamp renders as RFC 3339 in UTC at second precision, so the same
// instant serializes identically no matter which zone the host runs in.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, len(time.RFC3339)+2)
	b = append(b, '"')
	b = time.Time(t).UTC().AppendFormat(b, time.RFC3339)
	b = append(b, '"')
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler. null leaves the value as is.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a JSON string: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Health is the liveness report served on /healthz.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// VersionInfo identifies the running build.
type VersionInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
}

// SystemStatus is the readiness report: the rolled-up grade plus the
// per-part detail an operator needs when it is not OK.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
}

// SubsystemStatus reports one internal part, such as the snapshot store.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus reports one upstream data provider, including the
// circuit breaker state guarding it.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState,omitempty"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	ConsecutiveFailures int          `json:"consecutiveFailures,omitempty"`
	Message             *string      `json:"message,omitempty"`
}
