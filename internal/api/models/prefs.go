package models

import (
	"time"

	"github.com/airwise/airwise/internal/prefs"
)

// Preferences holds a user's notification and display settings.
type Preferences struct {
	UserID                string     `json:"userId"`
	NotificationsEnabled  bool       `json:"notificationsEnabled"`
	AlertThreshold        string     `json:"alertThreshold"`
	RealTimeAlerts        bool       `json:"realTimeAlerts"`
	DailySummary          bool       `json:"dailySummary"`
	WeeklyReport          bool       `json:"weeklyReport"`
	ExtremeConditionsOnly bool       `json:"extremeConditionsOnly"`
	SelectedLocation      string     `json:"selectedLocation"`
	SensitivityProfile    string     `json:"sensitivityProfile"`
	UpdatedAt             *Timestamp `json:"updatedAt,omitempty"`
}

// FromPreferences maps domain preferences to their API form.
func FromPreferences(p *prefs.Preferences) Preferences {
	out := Preferences{
		UserID:                p.UserID,
		NotificationsEnabled:  p.NotificationsEnabled,
		AlertThreshold:        p.AlertThreshold,
		RealTimeAlerts:        p.RealTimeAlerts,
		DailySummary:          p.DailySummary,
		WeeklyReport:          p.WeeklyReport,
		ExtremeConditionsOnly: p.ExtremeConditionsOnly,
		SelectedLocation:      p.SelectedLocation,
		SensitivityProfile:    p.SensitivityProfile,
	}
	if !p.UpdatedAt.IsZero() {
		ts := Timestamp(p.UpdatedAt)
		out.UpdatedAt = &ts
	}
	return out
}

// ToPreferences maps the API form back to the domain type.
func (p Preferences) ToPreferences() *prefs.Preferences {
	out := &prefs.Preferences{
		UserID:                p.UserID,
		NotificationsEnabled:  p.NotificationsEnabled,
		AlertThreshold:        p.AlertThreshold,
		RealTimeAlerts:        p.RealTimeAlerts,
		DailySummary:          p.DailySummary,
		WeeklyReport:          p.WeeklyReport,
		ExtremeConditionsOnly: p.ExtremeConditionsOnly,
		SelectedLocation:      p.SelectedLocation,
		SensitivityProfile:    p.SensitivityProfile,
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = time.Time(*p.UpdatedAt)
	}
	return out
}
