package sqldb

import (
	"context"
	"errors"
	"testing"

	"user-accounts/internal/config"
	"user-accounts/internal/domain"
	"user-accounts/internal/repository"
)

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return repo
}

func strPtr(s string) *string { return &s }

func TestUserRepository_CRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Create
	u := &domain.User{Username: "alice", PasswordHash: "hash-1"}
	id, err := repo.Create(ctx, u)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 || u.ID != id || u.IsAdmin {
		t.Fatalf("unexpected created user: id=%d %+v", id, u)
	}

	// GetByID
	g, err := repo.GetByID(ctx, id)
	if err != nil || g.Username != "alice" || g.PasswordHash != "hash-1" {
		t.Fatalf("get by id: %v %+v", err, g)
	}

	// GetByUsername
	g2, err := repo.GetByUsername(ctx, "alice")
	if err != nil || g2.ID != id {
		t.Fatalf("get by username: %v %+v", err, g2)
	}

	// Update username only
	up, err := repo.Update(ctx, id, domain.UserUpdate{Username: strPtr("alicia")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.Username != "alicia" || up.PasswordHash != "hash-1" {
		t.Fatalf("partial update changed the wrong fields: %+v", up)
	}

	// Update password only
	up, err = repo.Update(ctx, id, domain.UserUpdate{PasswordHash: strPtr("hash-2")})
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if up.Username != "alicia" || up.PasswordHash != "hash-2" {
		t.Fatalf("unexpected user after password update: %+v", up)
	}

	// Update both fields together
	up, err = repo.Update(ctx, id, domain.UserUpdate{Username: strPtr("alicia"), PasswordHash: strPtr("hash-3")})
	if err != nil {
		t.Fatalf("update both: %v", err)
	}
	if up.Username != "alicia" || up.PasswordHash != "hash-3" {
		t.Fatalf("unexpected user after combined update: %+v", up)
	}

	// SetAdmin
	adm, err := repo.SetAdmin(ctx, id, true)
	if err != nil || !adm.IsAdmin {
		t.Fatalf("set admin: %v %+v", err, adm)
	}

	// Delete returns the prior values
	del, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if del.ID != id || del.Username != "alicia" {
		t.Fatalf("delete returned %+v", del)
	}
	if _, err := repo.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByID: got %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByUsername: got %v", err)
	}
	if _, err := repo.Update(ctx, 42, domain.UserUpdate{Username: strPtr("x")}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Update: got %v", err)
	}
	if _, err := repo.Delete(ctx, 42); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Delete: got %v", err)
	}
	if _, err := repo.SetAdmin(ctx, 42, true); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("SetAdmin: got %v", err)
	}
}

func TestUserRepository_ListAndDuplicateUsernames(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}

	first := &domain.User{Username: "dup", PasswordHash: "a"}
	second := &domain.User{Username: "dup", PasswordHash: "b"}
	if _, err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := repo.Create(ctx, second); err != nil {
		t.Fatalf("usernames are not unique, second create failed: %v", err)
	}

	list, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("list not in insertion order: %+v", list)
	}

	got, err := repo.GetByUsername(ctx, "dup")
	if err != nil || got.ID != first.ID {
		t.Fatalf("GetByUsername should return the oldest match: %v %+v", err, got)
	}
}

func TestUserRepository_ParameterizedInput(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	name := "x'); DROP TABLE users; --"
	u := &domain.User{Username: name, PasswordHash: "h"}
	if _, err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.GetByUsername(ctx, name)
	if err != nil || got.Username != name {
		t.Fatalf("round trip of hostile username failed: %v %+v", err, got)
	}
}

func TestUserRepository_Ping(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestUserRepository_CreateWithAdminFlag(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := &domain.User{Username: "root", PasswordHash: "h", IsAdmin: true}
	id, err := repo.Create(ctx, u)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !u.IsAdmin {
		t.Fatal("RETURNING did not report the admin flag")
	}
	stored, err := repo.GetByID(ctx, id)
	if err != nil || !stored.IsAdmin {
		t.Fatalf("stored admin: %v %+v", err, stored)
	}
}
