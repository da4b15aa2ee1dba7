package operatorstore_test

import (
	"testing"

	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/system/authutil"
	"github.com/dalemusser/influencerhub/internal/app/system/indexes"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/testutil"
)

func setup(t *testing.T) *operatorstore.Store {
	t.Helper()
	db := testutil.SetupTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return operatorstore.New(db)
}

func TestCreate(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	op, err := s.Create(ctx, "  Admin@Example.COM ", " Ada Admin ", "correcthorse9")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if op.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if op.Email != "admin@example.com" {
		t.Errorf("Email = %q, want normalized", op.Email)
	}
	if op.Name != "Ada Admin" {
		t.Errorf("Name = %q, want trimmed", op.Name)
	}
	if op.Status != models.OperatorActive {
		t.Errorf("Status = %q, want active", op.Status)
	}
	if op.PasswordHash == "" || op.PasswordHash == "correcthorse9" {
		t.Error("password not hashed")
	}
	if !authutil.CheckPassword("correcthorse9", op.PasswordHash) {
		t.Error("stored hash does not match password")
	}
	if op.CreatedAt == nil {
		t.Error("expected CreatedAt to be set")
	}
}

func TestCreate_Rejects(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := s.Create(ctx, "not-an-email", "X", "correcthorse9"); err == nil {
		t.Error("expected invalid email to be rejected")
	}
	if _, err := s.Create(ctx, "x@example.com", "X", "short1"); err != authutil.ErrPasswordTooShort {
		t.Errorf("weak password: err = %v, want ErrPasswordTooShort", err)
	}

	if _, err := s.Create(ctx, "dup@example.com", "A", "correcthorse9"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := s.Create(ctx, "DUP@example.com", "B", "correcthorse9"); err != operatorstore.ErrDuplicateEmail {
		t.Errorf("duplicate: err = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByEmail(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, "find@example.com", "Find Me", "correcthorse9")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, ok, err := s.GetByEmail(ctx, "FIND@example.com")
	if err != nil || !ok {
		t.Fatalf("GetByEmail: ok=%v err=%v", ok, err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}

	_, ok, err = s.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if ok {
		t.Error("expected unknown email to be absent")
	}
}

func TestAuthenticate(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	op, err := s.Create(ctx, "auth@example.com", "Auth", "correcthorse9")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Authenticate(ctx, "Auth@Example.com", "correcthorse9")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != op.ID {
		t.Errorf("ID = %q, want %q", got.ID, op.ID)
	}

	if _, err := s.Authenticate(ctx, "auth@example.com", "wronghorse9"); err != operatorstore.ErrInvalidCredentials {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Authenticate(ctx, "ghost@example.com", "correcthorse9"); err != operatorstore.ErrInvalidCredentials {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}

	if err := s.SetStatus(ctx, op.ID, models.OperatorDisabled); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if _, err := s.Authenticate(ctx, "auth@example.com", "correcthorse9"); err != operatorstore.ErrDisabled {
		t.Errorf("disabled: err = %v, want ErrDisabled", err)
	}
}

func TestTouchLogin(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	op, err := s.Create(ctx, "touch@example.com", "Touch", "correcthorse9")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if op.LastLoginAt != nil {
		t.Fatal("new operator should have no last login")
	}
	if err := s.TouchLogin(ctx, op.ID); err != nil {
		t.Fatalf("TouchLogin failed: %v", err)
	}
	got, _, err := s.GetByID(ctx, op.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be set")
	}

	if err := s.TouchLogin(ctx, "missing"); err != operatorstore.ErrNotFound {
		t.Errorf("missing id: err = %v, want ErrNotFound", err)
	}
}

func TestSetPassword(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	op, err := s.Create(ctx, "pw@example.com", "PW", "correcthorse9")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.SetPassword(ctx, op.ID, "batterystaple7"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if _, err := s.Authenticate(ctx, "pw@example.com", "batterystaple7"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := s.Authenticate(ctx, "pw@example.com", "correcthorse9"); err != operatorstore.ErrInvalidCredentials {
		t.Errorf("old password: err = %v, want ErrInvalidCredentials", err)
	}
	if err := s.SetStatus(ctx, op.ID, "paused"); err == nil {
		t.Error("expected unknown status to be rejected")
	}
}
