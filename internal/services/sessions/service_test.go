package sessions

import (
	"context"
	"testing"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/session"
	"github.com/seedbotics/fieldgate/internal/storage/memory"
)

func seedSessions(t *testing.T, svc *Service) []session.PlantingSession {
	t.Helper()
	fixtures := []session.PlantingSession{
		{UserID: "user_1", RobotID: "robot_1", FarmID: "farm_1", Status: session.StatusCompleted},
		{UserID: "user_1", RobotID: "robot_1", FarmID: "farm_1", Status: session.StatusCompleted},
		{UserID: "user_1", RobotID: "robot_2", FarmID: "farm_2", Status: session.StatusInProgress},
		{UserID: "user_2", RobotID: "robot_3", FarmID: "farm_3", Status: session.StatusCompleted},
	}
	out := make([]session.PlantingSession, 0, len(fixtures))
	for _, f := range fixtures {
		stored, err := svc.Record(context.Background(), f)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		out = append(out, stored)
	}
	return out
}

func TestListNewestFirstScopedToCaller(t *testing.T) {
	svc := New(memory.New(), nil)
	seeded := seedSessions(t, svc)

	page, err := svc.List(context.Background(), "user_1", Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 || len(page.Sessions) != 3 {
		t.Fatalf("unexpected page: total=%d len=%d", page.Total, len(page.Sessions))
	}
	// Insertion order reversed: seeded[2] first.
	if page.Sessions[0].ID != seeded[2].ID || page.Sessions[2].ID != seeded[0].ID {
		t.Fatalf("unexpected order: %s .. %s", page.Sessions[0].ID, page.Sessions[2].ID)
	}
}

func TestListFilters(t *testing.T) {
	svc := New(memory.New(), nil)
	seedSessions(t, svc)
	ctx := context.Background()

	byRobot, err := svc.List(ctx, "user_1", Filter{RobotID: "robot_1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if byRobot.Total != 2 {
		t.Fatalf("robot filter total = %d", byRobot.Total)
	}

	byStatus, err := svc.List(ctx, "user_1", Filter{Status: session.StatusInProgress})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if byStatus.Total != 1 || byStatus.Sessions[0].RobotID != "robot_2" {
		t.Fatalf("status filter page: %+v", byStatus)
	}

	byFarm, err := svc.List(ctx, "user_1", Filter{FarmID: "farm_2"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if byFarm.Total != 1 {
		t.Fatalf("farm filter total = %d", byFarm.Total)
	}

	if _, err := svc.List(ctx, "user_1", Filter{Status: session.Status("bogus")}); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListLimitTruncatesAfterTotal(t *testing.T) {
	svc := New(memory.New(), nil)
	seedSessions(t, svc)

	page, err := svc.List(context.Background(), "user_1", Filter{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 || len(page.Sessions) != 2 {
		t.Fatalf("total=%d len=%d, want 3/2", page.Total, len(page.Sessions))
	}

	if _, err := svc.List(context.Background(), "user_1", Filter{Limit: MaxLimit + 1}); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for oversized limit, got %v", err)
	}
}

func TestGetOwnership(t *testing.T) {
	svc := New(memory.New(), nil)
	seeded := seedSessions(t, svc)
	ctx := context.Background()

	sess, err := svc.Get(ctx, "user_1", seeded[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.ID != seeded[0].ID {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := svc.Get(ctx, "user_1", "session_missing"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(ctx, "user_1", seeded[3].ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
