package maintenance

import (
	"context"
	"testing"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/maintenance"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.Store, string) {
	t.Helper()
	store := memory.New()
	r, err := store.PutRobot(context.Background(), robot.Robot{UserID: "user_1", Name: "Bot"})
	if err != nil {
		t.Fatalf("PutRobot: %v", err)
	}
	return New(store, store, nil), store, r.ID
}

func TestRecordStampsRobot(t *testing.T) {
	svc, store, robotID := newService(t)
	ctx := context.Background()

	entry, err := svc.Record(ctx, "user_1", CreateInput{
		RobotID: robotID,
		Kind:    maintenance.KindRepair,
		Title:   "Replaced seed hopper",
		Cost:    120,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if entry.ID == "" || entry.UserID != "user_1" || entry.Timestamp.IsZero() {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	r, err := store.GetRobot(ctx, robotID)
	if err != nil {
		t.Fatalf("GetRobot: %v", err)
	}
	if r.LastMaintenanceAt == nil || !r.LastMaintenanceAt.Equal(entry.Timestamp) {
		t.Fatalf("last maintenance not stamped: %+v", r.LastMaintenanceAt)
	}
}

func TestRecordValidation(t *testing.T) {
	svc, _, robotID := newService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
		code apperr.Code
	}{
		{"missing robot", CreateInput{Kind: maintenance.KindRepair, Title: "x"}, apperr.CodeValidation},
		{"bad kind", CreateInput{RobotID: robotID, Kind: "demolition", Title: "x"}, apperr.CodeValidation},
		{"missing title", CreateInput{RobotID: robotID, Kind: maintenance.KindRepair}, apperr.CodeValidation},
		{"unknown robot", CreateInput{RobotID: "robot_missing", Kind: maintenance.KindRepair, Title: "x"}, apperr.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Record(ctx, "user_1", tc.in); !apperr.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestListByRobotOwnership(t *testing.T) {
	svc, _, robotID := newService(t)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "user_1", CreateInput{RobotID: robotID, Kind: maintenance.KindInspection, Title: "Annual check"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	logs, err := svc.ListByRobot(ctx, "user_1", robotID)
	if err != nil {
		t.Fatalf("ListByRobot: %v", err)
	}
	if len(logs) != 1 || logs[0].Title != "Annual check" {
		t.Fatalf("unexpected logs: %+v", logs)
	}

	if _, err := svc.ListByRobot(ctx, "user_2", robotID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.ListByRobot(ctx, "user_1", ""); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
