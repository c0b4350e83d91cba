package alerts

import (
	"context"
	"fmt"
	"testing"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/alert"
	"github.com/seedbotics/fieldgate/internal/storage/memory"
)

func seedAlerts(t *testing.T, svc *Service, userID string, n int) []alert.Alert {
	t.Helper()
	out := make([]alert.Alert, 0, n)
	for i := 0; i < n; i++ {
		a, err := svc.Raise(context.Background(), alert.Alert{
			UserID:   userID,
			Kind:     alert.KindWarning,
			Category: alert.CategoryBattery,
			Title:    fmt.Sprintf("alert %d", i),
			Severity: 2,
		})
		if err != nil {
			t.Fatalf("Raise: %v", err)
		}
		out = append(out, a)
	}
	return out
}

func TestListEmpty(t *testing.T) {
	svc := New(memory.New(), nil)

	page, err := svc.List(context.Background(), "user_1", false, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Alerts == nil {
		t.Fatal("alerts must be an empty slice, not nil")
	}
	if page.Total != 0 || page.Unacknowledged != 0 {
		t.Fatalf("unexpected counts: %+v", page)
	}
}

func TestListCountsAndFilter(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	seeded := seedAlerts(t, svc, "user_1", 3)
	seedAlerts(t, svc, "user_2", 1)

	if _, err := svc.Acknowledge(ctx, "user_1", seeded[0].ID); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}

	page, err := svc.List(ctx, "user_1", false, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 || page.Unacknowledged != 2 || len(page.Alerts) != 3 {
		t.Fatalf("unexpected page: total=%d unack=%d len=%d", page.Total, page.Unacknowledged, len(page.Alerts))
	}
	// Newest first.
	if page.Alerts[0].ID != seeded[2].ID {
		t.Fatalf("first alert = %s, want %s", page.Alerts[0].ID, seeded[2].ID)
	}

	open, err := svc.List(ctx, "user_1", true, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open.Alerts) != 2 || open.Total != 3 || open.Unacknowledged != 2 {
		t.Fatalf("unexpected filtered page: %+v", open)
	}
	for _, a := range open.Alerts {
		if a.Acknowledged {
			t.Fatalf("acknowledged alert in filtered page: %+v", a)
		}
	}
}

func TestListLimitBounds(t *testing.T) {
	svc := New(memory.New(), nil)
	seedAlerts(t, svc, "user_1", 60)
	ctx := context.Background()

	page, err := svc.List(ctx, "user_1", false, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Alerts) != DefaultLimit || page.Total != 60 {
		t.Fatalf("default limit page: len=%d total=%d", len(page.Alerts), page.Total)
	}

	if _, err := svc.List(ctx, "user_1", false, 5000); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for oversized limit, got %v", err)
	}
	if _, err := svc.List(ctx, "user_1", false, -1); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for negative limit, got %v", err)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	svc := New(memory.New(), nil)
	seeded := seedAlerts(t, svc, "user_1", 3)

	page, err := svc.List(context.Background(), "user_1", false, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Alerts) != 2 || page.Total != 3 {
		t.Fatalf("unexpected page: len=%d total=%d", len(page.Alerts), page.Total)
	}
	if page.Alerts[0].ID != seeded[2].ID || page.Alerts[1].ID != seeded[1].ID {
		t.Fatalf("unexpected order: %s, %s", page.Alerts[0].ID, page.Alerts[1].ID)
	}
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	seeded := seedAlerts(t, svc, "user_1", 1)

	first, err := svc.Acknowledge(ctx, "user_1", seeded[0].ID)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	second, err := svc.Acknowledge(ctx, "user_1", seeded[0].ID)
	if err != nil {
		t.Fatalf("re-acknowledge must not fail: %v", err)
	}
	if !first.Success || !second.Success || second.AlertID != seeded[0].ID {
		t.Fatalf("unexpected receipts: %+v %+v", first, second)
	}
}

func TestAcknowledgeOwnership(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	seeded := seedAlerts(t, svc, "user_1", 1)

	if _, err := svc.Acknowledge(ctx, "user_2", "alert_missing"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Acknowledge(ctx, "user_2", seeded[0].ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
