package auth

import (
	"context"
	"testing"
	"time"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/identity"
	"github.com/seedbotics/fieldgate/internal/storage/memory"
)

func newService() *Service {
	return New(memory.New(), identity.NewJWTManager("test-secret", time.Hour), nil)
}

func register(t *testing.T, svc *Service, email string) Credentials {
	t.Helper()
	creds, err := svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "longenough",
		Name:     "Kofi Mensah",
		FarmName: "Greenfield",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return creds
}

func TestRegisterHappyPath(t *testing.T) {
	svc := newService()
	creds := register(t, svc, "kofi@example.com")

	if creds.Token == "" {
		t.Fatal("expected token")
	}
	u := creds.User
	if u.ID == "" || u.Email != "kofi@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.IsVerified {
		t.Fatal("new user must start unverified")
	}
	if u.Role != "farmer" {
		t.Fatalf("role = %s", u.Role)
	}
	prefs := u.Preferences
	if !prefs.Notifications || prefs.Language != "en" || prefs.Units != "metric" {
		t.Fatalf("default preferences not applied: %+v", prefs)
	}
	if u.PasswordHash == "" || u.PasswordHash == "longenough" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "longenough", Name: "Ok"}, "email"},
		{"short password", RegisterInput{Email: "a@b.com", Password: "short", Name: "Ok"}, "password"},
		{"short name", RegisterInput{Email: "a@b.com", Password: "longenough", Name: "X"}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			if !apperr.IsCode(err, apperr.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if svcErr := apperr.GetServiceError(err); svcErr.Details["field"] != tc.field {
				t.Fatalf("field detail = %v, want %s", svcErr.Details["field"], tc.field)
			}
		})
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := newService()
	register(t, svc, "kofi@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "KOFI@example.com",
		Password: "different1",
		Name:     "Imposter",
	})
	if !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginHappyPathStampsLastLogin(t *testing.T) {
	svc := newService()
	register(t, svc, "kofi@example.com")

	creds, err := svc.Login(context.Background(), "kofi@example.com", "longenough")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.Token == "" {
		t.Fatal("expected token")
	}
	if creds.User.LastLoginAt == nil {
		t.Fatal("lastLoginAt not stamped")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newService()
	register(t, svc, "kofi@example.com")
	ctx := context.Background()

	_, errUnknown := svc.Login(ctx, "nobody@example.com", "longenough")
	_, errWrongPw := svc.Login(ctx, "kofi@example.com", "wrongpassword")

	for _, err := range []error{errUnknown, errWrongPw} {
		if !apperr.IsCode(err, apperr.CodeUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestMe(t *testing.T) {
	svc := newService()
	creds := register(t, svc, "kofi@example.com")

	u, err := svc.Me(context.Background(), creds.User.ID)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.Email != "kofi@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := svc.Me(context.Background(), "user_missing"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
