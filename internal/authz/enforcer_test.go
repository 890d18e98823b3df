// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package authz

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

func setupEnforcer(t *testing.T, cfg Config) *Enforcer {
	t.Helper()
	enf, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enf.Close)
	return enf
}

func TestAuthorize(t *testing.T) {
	enf := setupEnforcer(t, Config{})

	tests := []struct {
		role  models.Role
		kind  wire.ActionKind
		allow bool
	}{
		{models.RoleViewer, wire.ActionMoveCard, false},
		{models.RoleViewer, wire.ActionAddComment, false},
		{models.RoleViewer, wire.ActionUpdateBoard, false},
		{models.RoleDeveloper, wire.ActionMoveCard, true},
		{models.RoleDeveloper, wire.ActionAddChecklistItem, true},
		{models.RoleDeveloper, wire.ActionDeleteAttachment, true},
		{models.RoleDeveloper, wire.ActionMoveList, false},
		{models.RoleDeveloper, wire.ActionCreateLabel, false},
		{models.RoleAdmin, wire.ActionMoveList, true},
		{models.RoleAdmin, wire.ActionRemoveMember, true},
		{models.RoleAdmin, wire.ActionUpdateCard, true},
		{models.RoleOwner, wire.ActionUpdateBoard, true},
		{models.RoleOwner, wire.ActionDeleteList, true},
		{"", wire.ActionUpdateCard, false},
		{"stranger", wire.ActionUpdateCard, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.kind), func(t *testing.T) {
			err := enf.Authorize(tt.role, tt.kind)
			if tt.allow && err != nil {
				t.Errorf("Authorize() = %v, want allowed", err)
			}
			if !tt.allow && !errors.Is(err, ErrForbidden) {
				t.Errorf("Authorize() = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestAuthorizeHeartbeatAndUnknown(t *testing.T) {
	enf := setupEnforcer(t, Config{})
	if err := enf.Authorize(models.RoleViewer, wire.ActionHeartbeat); err != nil {
		t.Errorf("heartbeat: %v", err)
	}
	if err := enf.Authorize(models.RoleOwner, "board/explode/fulfilled"); !errors.Is(err, ErrForbidden) {
		t.Errorf("unknown kind: %v", err)
	}
}

func TestEveryKindHasObject(t *testing.T) {
	for _, kind := range wire.AllActionKinds() {
		if _, ok := ObjectFor(kind); !ok {
			t.Errorf("%s has no policy object", kind)
		}
	}
}

func TestCanRead(t *testing.T) {
	enf := setupEnforcer(t, Config{})
	for _, role := range []models.Role{models.RoleViewer, models.RoleDeveloper, models.RoleAdmin, models.RoleOwner} {
		if !enf.CanRead(role) {
			t.Errorf("%s cannot read", role)
		}
	}
	if enf.CanRead("stranger") {
		t.Error("stranger can read")
	}
}

func TestDecisionCache(t *testing.T) {
	enf := setupEnforcer(t, Config{})
	for range 3 {
		if _, err := enf.Enforce("developer", "card", ActWrite); err != nil {
			t.Fatal(err)
		}
	}
	if n := enf.cache.len(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}

	uncached := setupEnforcer(t, Config{DisableCache: true})
	if uncached.cache != nil {
		t.Error("cache present with DisableCache")
	}
	allowed, err := uncached.Enforce("developer", "card", ActWrite)
	if err != nil || !allowed {
		t.Errorf("Enforce() = %v, %v", allowed, err)
	}
}

func TestPolicyFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	// Viewers may comment on this deployment.
	policy := "p, viewer, comment, write\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}
	enf := setupEnforcer(t, Config{PolicyPath: path})
	if err := enf.Authorize(models.RoleViewer, wire.ActionAddComment); err != nil {
		t.Errorf("viewer comment: %v", err)
	}
	if err := enf.Authorize(models.RoleViewer, wire.ActionMoveCard); !errors.Is(err, ErrForbidden) {
		t.Errorf("viewer move: %v", err)
	}

	if err := os.WriteFile(path, []byte("p, viewer, card, write\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := enf.ReloadPolicy(); err != nil {
		t.Fatalf("ReloadPolicy: %v", err)
	}
	if err := enf.Authorize(models.RoleViewer, wire.ActionMoveCard); err != nil {
		t.Errorf("viewer move after reload: %v", err)
	}
}

func TestLoadPolicyRejectsMalformedLines(t *testing.T) {
	tests := []string{
		"p, viewer, board\n",
		"g, viewer\n",
		"x, viewer, board, read\n",
	}
	for _, policy := range tests {
		enf, err := NewEnforcer(Config{})
		if err != nil {
			t.Fatal(err)
		}
		if err := loadPolicy(enf.enforcer, policy); err == nil {
			t.Errorf("loadPolicy(%q) succeeded", policy)
		}
		enf.Close()
	}
}
