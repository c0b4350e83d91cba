package robots

import (
	"context"
	"fmt"
	"testing"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/devicelink"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/domain/telemetry"
	"github.com/seedbotics/fieldgate/internal/storage/memory"
)

func newService() (*Service, *memory.Store, *devicelink.Mock) {
	store := memory.New()
	link := devicelink.NewMock(nil)
	return New(store, link, nil), store, link
}

func registerRobot(t *testing.T, svc *Service, userID string) robot.Robot {
	t.Helper()
	r, err := svc.Register(context.Background(), userID, RegisterInput{
		Name:         "SeedBot",
		SerialNumber: "SB-001",
		Model:        "SB-100",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

func TestRegisterAndList(t *testing.T) {
	svc, _, link := newService()
	ctx := context.Background()

	r := registerRobot(t, svc, "user_1")
	if r.Status != robot.StatusInactive {
		t.Fatalf("new robot status = %s", r.Status)
	}

	connected, _ := link.Connected(ctx, r.ID)
	if !connected {
		t.Fatal("registration should connect the robot")
	}

	mine, err := svc.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != r.ID {
		t.Fatalf("unexpected list: %+v", mine)
	}

	theirs, err := svc.List(ctx, "user_2")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("other user sees %d robots", len(theirs))
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Register(context.Background(), "user_1", RegisterInput{SerialNumber: "SB-1"})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOwnershipOrder(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	r := registerRobot(t, svc, "user_1")

	// Missing robot: NotFound even for a caller who owns nothing.
	if _, err := svc.Status(ctx, "user_2", "robot_missing"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	// Existing robot, wrong owner: Forbidden.
	if _, err := svc.Status(ctx, "user_2", r.ID); !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	// Owner: OK.
	view, err := svc.Status(ctx, "user_1", r.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if view.Robot.ID != r.ID || !view.Shadow.Connected {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestCommandValidatesBeforeForwarding(t *testing.T) {
	svc, _, link := newService()
	ctx := context.Background()
	r := registerRobot(t, svc, "user_1")

	events, cancel, err := link.Subscribe(ctx, r.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	if _, err := svc.Command(ctx, "user_1", r.ID, robot.Command("self_destruct"), nil); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	select {
	case evt := <-events:
		t.Fatalf("invalid command was forwarded: %+v", evt)
	default:
	}

	receipt, err := svc.Command(ctx, "user_1", r.ID, robot.CommandStart, map[string]any{"speed": 2})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if receipt.CommandID == "" || receipt.Command != robot.CommandStart {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	select {
	case evt := <-events:
		if evt.Payload["command"] != "start" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	default:
		t.Fatal("valid command not forwarded")
	}
}

func TestCommandOwnership(t *testing.T) {
	svc, _, _ := newService()
	r := registerRobot(t, svc, "user_1")

	_, err := svc.Command(context.Background(), "user_2", r.ID, robot.CommandStop, nil)
	if !apperr.IsCode(err, apperr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTelemetryLimitBounds(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()
	r := registerRobot(t, svc, "user_1")

	for i := 0; i < 150; i++ {
		if _, err := store.AppendReading(ctx, r.ID, telemetry.SensorReading{ID: fmt.Sprintf("reading_%d", i)}); err != nil {
			t.Fatalf("AppendReading: %v", err)
		}
	}

	page, err := svc.Telemetry(ctx, "user_1", r.ID, 0)
	if err != nil {
		t.Fatalf("Telemetry: %v", err)
	}
	if page.Count != DefaultTelemetryLimit {
		t.Fatalf("default limit returned %d readings", page.Count)
	}
	// Most recent first reading in the tail window.
	if page.Readings[0].ID != "reading_50" {
		t.Fatalf("window starts at %s", page.Readings[0].ID)
	}

	page, err = svc.Telemetry(ctx, "user_1", r.ID, 10)
	if err != nil {
		t.Fatalf("Telemetry: %v", err)
	}
	if page.Count != 10 || page.Readings[9].ID != "reading_149" {
		t.Fatalf("unexpected page: count=%d", page.Count)
	}

	if _, err := svc.Telemetry(ctx, "user_1", r.ID, MaxTelemetryLimit+1); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for oversized limit, got %v", err)
	}
}

func TestIngestReadingUpdatesShadow(t *testing.T) {
	svc, store, link := newService()
	ctx := context.Background()
	r := registerRobot(t, svc, "user_1")

	stored, err := svc.IngestReading(ctx, "user_1", r.ID, telemetry.SensorReading{
		BatteryLevel:   63.5,
		SignalStrength: -70,
	})
	if err != nil {
		t.Fatalf("IngestReading: %v", err)
	}
	if stored.ID == "" || stored.RobotID != r.ID {
		t.Fatalf("unexpected reading: %+v", stored)
	}

	count, _ := store.CountReadings(ctx, r.ID)
	if count != 1 {
		t.Fatalf("count = %d", count)
	}

	shadow, _ := link.Shadow(ctx, r.ID)
	if shadow.BatteryLevel != 63.5 {
		t.Fatalf("shadow battery = %v", shadow.BatteryLevel)
	}
}

func TestUpdatePatchesOwnedRobot(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	r := registerRobot(t, svc, "user_1")

	name := "SeedBot Renamed"
	status := robot.StatusMaintenance
	updated, err := svc.Update(ctx, "user_1", r.ID, robot.Patch{Name: &name, Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != name || updated.Status != robot.StatusMaintenance {
		t.Fatalf("patch not applied: %+v", updated)
	}

	bad := robot.Status("exploded")
	if _, err := svc.Update(ctx, "user_1", r.ID, robot.Patch{Status: &bad}); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
