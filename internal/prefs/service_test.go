package prefs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/airwise/airwise/internal/prefs"
)

func TestService_Get_DefaultsForNewUser(t *testing.T) {
	service := prefs.NewService(prefs.NewMemoryRepository())
	ctx := context.Background()

	p, err := service.Get(ctx, "user123")
	if err != nil {
		t.Fatalf("failed to get preferences: %v", err)
	}

	if p.UserID != "user123" {
		t.Errorf("expected userId %q, got %q", "user123", p.UserID)
	}
	if !p.NotificationsEnabled {
		t.Error("expected notifications to be enabled by default")
	}
	if p.AlertThreshold != "all" {
		t.Errorf("expected alert threshold %q, got %q", "all", p.AlertThreshold)
	}
	if !p.RealTimeAlerts {
		t.Error("expected real-time alerts to be enabled by default")
	}
	if !p.DailySummary {
		t.Error("expected daily summary to be enabled by default")
	}
	if p.WeeklyReport {
		t.Error("expected weekly report to be disabled by default")
	}
	if p.ExtremeConditionsOnly {
		t.Error("expected extreme-conditions-only to be disabled by default")
	}
	if p.SelectedLocation != "all" {
		t.Errorf("expected selected location %q, got %q", "all", p.SelectedLocation)
	}
	if p.SensitivityProfile != "normal" {
		t.Errorf("expected sensitivity profile %q, got %q", "normal", p.SensitivityProfile)
	}
}

func TestService_Get_RequiresUserID(t *testing.T) {
	service := prefs.NewService(prefs.NewMemoryRepository())

	_, err := service.Get(context.Background(), "")
	if !errors.Is(err, prefs.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestService_CreateThenGet(t *testing.T) {
	service := prefs.NewService(prefs.NewMemoryRepository())
	ctx := context.Background()

	in := &prefs.Preferences{
		UserID:             "user123",
		AlertThreshold:     "unhealthy",
		SelectedLocation:   "Sector 56",
		SensitivityProfile: "sensitive",
	}

	saved, err := service.Create(ctx, in)
	if err != nil {
		t.Fatalf("failed to create preferences: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set on create")
	}

	got, err := service.Get(ctx, "user123")
	if err != nil {
		t.Fatalf("failed to get preferences: %v", err)
	}
	if got.AlertThreshold != "unhealthy" {
		t.Errorf("expected alert threshold %q, got %q", "unhealthy", got.AlertThreshold)
	}
	if got.SelectedLocation != "Sector 56" {
		t.Errorf("expected selected location %q, got %q", "Sector 56", got.SelectedLocation)
	}
}

func TestService_Create_RequiresUserID(t *testing.T) {
	service := prefs.NewService(prefs.NewMemoryRepository())

	_, err := service.Create(context.Background(), &prefs.Preferences{})
	if !errors.Is(err, prefs.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	service := prefs.NewService(prefs.NewMemoryRepository())
	ctx := context.Background()

	if _, err := service.Create(ctx, &prefs.Preferences{UserID: "user123", AlertThreshold: "all"}); err != nil {
		t.Fatalf("failed to create preferences: %v", err)
	}

	updated, err := service.Update(ctx, "user123", &prefs.Preferences{UserID: "user123", AlertThreshold: "hazardous"})
	if err != nil {
		t.Fatalf("failed to update preferences: %v", err)
	}
	if updated.AlertThreshold != "hazardous" {
		t.Errorf("expected alert threshold %q, got %q", "hazardous", updated.AlertThreshold)
	}

	got, err := service.Get(ctx, "user123")
	if err != nil {
		t.Fatalf("failed to get preferences: %v", err)
	}
	if got.AlertThreshold != "hazardous" {
		t.Errorf("expected stored alert threshold %q, got %q", "hazardous", got.AlertThreshold)
	}
}

func TestService_Update_UserIDMismatch(t *testing.T) {
	service := prefs.NewService(prefs.NewMemoryRepository())

	_, err := service.Update(context.Background(), "user123", &prefs.Preferences{UserID: "other"})
	if !errors.Is(err, prefs.ErrUserIDMismatch) {
		t.Fatalf("expected ErrUserIDMismatch, got %v", err)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := prefs.NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Put(ctx, &prefs.Preferences{UserID: "user123", AlertThreshold: "all"}); err != nil {
		t.Fatalf("failed to put preferences: %v", err)
	}

	first, err := repo.Get(ctx, "user123")
	if err != nil {
		t.Fatalf("failed to get preferences: %v", err)
	}
	first.AlertThreshold = "mutated"

	second, err := repo.Get(ctx, "user123")
	if err != nil {
		t.Fatalf("failed to get preferences: %v", err)
	}
	if second.AlertThreshold != "all" {
		t.Errorf("expected stored value to be unchanged, got %q", second.AlertThreshold)
	}
}

func TestMemoryRepository_GetUnknownUser(t *testing.T) {
	repo := prefs.NewMemoryRepository()

	_, err := repo.Get(context.Background(), "nobody")
	if !errors.Is(err, prefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
