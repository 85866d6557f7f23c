// Package prefs manages per-user dashboard preferences.
package prefs

import (
	"errors"
	"time"
)

// Repository and service errors.
var (
	ErrNotFound       = errors.New("preferences not found")
	ErrUserIDRequired = errors.New("userId is required")
	ErrUserIDMismatch = errors.New("user id mismatch")
)

// Accepted alertThreshold values, mild to severe. "all" alerts on every band.
var AlertThresholds = []string{"all", "moderate", "unhealthy", "very_unhealthy", "hazardous"}

// Accepted sensitivityProfile values. "sensitive" widens the advisory bands
// for at-risk groups.
var SensitivityProfiles = []string{"normal", "sensitive"}

// ValidAlertThreshold reports whether s is an accepted alertThreshold value.
func ValidAlertThreshold(s string) bool {
	for _, v := range AlertThresholds {
		if s == v {
			return true
		}
	}
	return false
}

// ValidSensitivityProfile reports whether s is an accepted sensitivityProfile
// value.
func ValidSensitivityProfile(s string) bool {
	for _, v := range SensitivityProfiles {
		if s == v {
			return true
		}
	}
	return false
}

// Preferences holds a user's notification and display settings.
type Preferences struct {
	UserID                string
	NotificationsEnabled  bool
	AlertThreshold        string
	RealTimeAlerts        bool
	DailySummary          bool
	WeeklyReport          bool
	ExtremeConditionsOnly bool
	SelectedLocation      string
	SensitivityProfile    string
	UpdatedAt             time.Time
}

// DefaultPreferences returns the settings a new user starts with.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:                userID,
		NotificationsEnabled:  true,
		AlertThreshold:        "all",
		RealTimeAlerts:        true,
		DailySummary:          true,
		WeeklyReport:          false,
		ExtremeConditionsOnly: false,
		SelectedLocation:      "all",
		SensitivityProfile:    "normal",
	}
}
