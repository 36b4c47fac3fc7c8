package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"medbuscador/internal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedsDefaultAccounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u, err := s.Authenticate(ctx, "admin", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != internal.RoleAdmin {
		t.Fatalf("role=%q", u.Role)
	}
	if _, err := s.Authenticate(ctx, "consulta", "consulta"); err != nil {
		t.Fatal(err)
	}
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Authenticate(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err=%v", err)
	}
	if _, err := s.Authenticate(ctx, "nadie", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err=%v", err)
	}
}

func TestUserLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := internal.User{Username: "quimico", Role: internal.RoleConsulta}
	if err := s.CreateUser(ctx, user, "secreto"); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, user, "otro"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("err=%v", err)
	}

	if err := s.UpdatePassword(ctx, "quimico", "nuevo"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Authenticate(ctx, "quimico", "secreto"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still valid: %v", err)
	}
	if _, err := s.Authenticate(ctx, "quimico", "nuevo"); err != nil {
		t.Fatal(err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("users=%v", users)
	}

	if err := s.DeleteUser(ctx, "quimico"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteUser(ctx, "quimico"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestCreateUserValidatesRole(t *testing.T) {
	s := openTestStore(t)
	err := s.CreateUser(context.Background(), internal.User{Username: "x", Role: "root"}, "pw")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunAudit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, query := range []string{"ibuprofeno", "paracetamol"} {
		err := s.RecordRun(ctx, Run{Username: "admin", Query: query, Mode: "both", Hits: i + 1, Elapsed: 1200})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs=%v", runs)
	}
	if runs[0].Query != "paracetamol" || runs[1].Query != "ibuprofeno" {
		t.Fatalf("order wrong: %v", runs)
	}
	if runs[0].CreatedAt.IsZero() {
		t.Fatal("created_at not parsed")
	}
}
