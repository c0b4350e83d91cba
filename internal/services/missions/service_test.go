package missions

import (
	"context"
	"testing"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/mission"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/domain/user"
	"github.com/seedbotics/fieldgate/internal/storage/memory"
)

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	store := memory.New()
	r, err := store.PutRobot(context.Background(), robot.Robot{UserID: "user_1", Name: "Bot"})
	if err != nil {
		t.Fatalf("PutRobot: %v", err)
	}
	return New(store, store, nil), r.ID
}

func waypoints() []mission.Waypoint {
	return []mission.Waypoint{{GeoPoint: user.GeoPoint{Latitude: 5.6, Longitude: -0.18}}}
}

func TestCreateDefaults(t *testing.T) {
	svc, robotID := newService(t)

	m, err := svc.Create(context.Background(), "user_1", CreateInput{
		RobotID:   robotID,
		Kind:      mission.KindPlanting,
		Waypoints: waypoints(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Status != mission.StatusScheduled {
		t.Fatalf("status = %s", m.Status)
	}
	if m.Priority != mission.PriorityMedium {
		t.Fatalf("priority = %s", m.Priority)
	}
	if m.ScheduledStart.IsZero() {
		t.Fatal("scheduledStart not defaulted")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, robotID := newService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
		code apperr.Code
	}{
		{"missing robot id", CreateInput{Kind: mission.KindPlanting, Waypoints: waypoints()}, apperr.CodeValidation},
		{"bad kind", CreateInput{RobotID: robotID, Kind: "terraforming", Waypoints: waypoints()}, apperr.CodeValidation},
		{"no waypoints", CreateInput{RobotID: robotID, Kind: mission.KindPlanting}, apperr.CodeValidation},
		{"unknown robot", CreateInput{RobotID: "robot_missing", Kind: mission.KindPlanting, Waypoints: waypoints()}, apperr.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "user_1", tc.in); !apperr.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}

	if _, err := svc.Create(ctx, "user_2", CreateInput{RobotID: robotID, Kind: mission.KindPlanting, Waypoints: waypoints()}); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden for foreign robot, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, robotID := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "user_1", CreateInput{RobotID: robotID, Kind: mission.KindPlanting, Waypoints: waypoints()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(ctx, "user_1", CreateInput{RobotID: robotID, Kind: mission.KindSurvey, Waypoints: waypoints()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := svc.List(ctx, "user_1", Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("unexpected list: %+v", all)
	}

	if _, err := svc.Cancel(ctx, "user_1", first.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	cancelled, err := svc.List(ctx, "user_1", Filter{Status: mission.StatusCancelled})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cancelled) != 1 || cancelled[0].ID != first.ID {
		t.Fatalf("unexpected filtered list: %+v", cancelled)
	}
}

func TestCancelTerminalMissionFails(t *testing.T) {
	svc, robotID := newService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "user_1", CreateInput{RobotID: robotID, Kind: mission.KindPlanting, Waypoints: waypoints()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, "user_1", m.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != mission.StatusCancelled || cancelled.ActualEnd == nil {
		t.Fatalf("unexpected mission: %+v", cancelled)
	}

	if _, err := svc.Cancel(ctx, "user_1", m.ID); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("cancelling a terminal mission must be a validation failure, got %v", err)
	}
}

func TestGetOwnership(t *testing.T) {
	svc, robotID := newService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "user_1", CreateInput{RobotID: robotID, Kind: mission.KindPlanting, Waypoints: waypoints()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, "user_2", m.ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, "user_1", "mission_missing"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
