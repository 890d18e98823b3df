// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/rs/zerolog"

	"github.com/tomtom215/boardsync/internal/logging"
	"github.com/tomtom215/boardsync/internal/models"
	"github.com/tomtom215/boardsync/internal/wire"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// ErrForbidden is returned when a role may not perform an action.
var ErrForbidden = errors.New("forbidden")

// Actions understood by the policy.
const (
	ActRead  = "read"
	ActWrite = "write"
)

// Config holds enforcer settings. Empty paths select the embedded files.
type Config struct {
	ModelPath  string
	PolicyPath string
	// DisableCache turns off the decision cache.
	DisableCache bool
}

// Enforcer wraps a Casbin enforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
	logger   zerolog.Logger
}

// NewEnforcer loads the model and policy.
func NewEnforcer(cfg Config) (*Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{
		enforcer: enforcer,
		logger:   logging.WithComponent("authz"),
	}
	if !cfg.DisableCache {
		e.cache = newDecisionCache()
	}
	return e, nil
}

// loadPolicy adds the p and g lines of a policy CSV.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		rule := parts[1:]
		switch parts[0] {
		case "p":
			if len(rule) != 3 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) != 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("unknown policy type in %q", line)
		}
	}
	return nil
}

// Enforce reports whether role may perform act on obj.
func (e *Enforcer) Enforce(role, obj, act string) (bool, error) {
	if e.cache != nil {
		if allowed, ok := e.cache.get(role, obj, act); ok {
			return allowed, nil
		}
	}
	allowed, err := e.enforcer.Enforce(role, obj, act)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	if e.cache != nil {
		e.cache.set(role, obj, act, allowed)
	}
	return allowed, nil
}

// Authorize returns nil when role may perform kind and an error wrapping
// ErrForbidden otherwise. Heartbeats are always allowed.
func (e *Enforcer) Authorize(role models.Role, kind wire.ActionKind) error {
	if kind == wire.ActionHeartbeat {
		return nil
	}
	obj, ok := ObjectFor(kind)
	if !ok {
		return fmt.Errorf("%w: unknown action %q", ErrForbidden, kind)
	}
	if role == "" {
		return fmt.Errorf("%w: not a member of this board", ErrForbidden)
	}
	allowed, err := e.Enforce(string(role), obj, ActWrite)
	if err != nil {
		return err
	}
	if !allowed {
		e.logger.Debug().Str("role", string(role)).Str("action", string(kind)).Msg("mutation denied")
		return fmt.Errorf("%w: %s may not %s", ErrForbidden, role, kind)
	}
	return nil
}

// CanRead reports whether role may view the board.
func (e *Enforcer) CanRead(role models.Role) bool {
	allowed, err := e.Enforce(string(role), "board", ActRead)
	return err == nil && allowed
}

// ReloadPolicy reloads a file-backed policy and drops cached decisions.
func (e *Enforcer) ReloadPolicy() error {
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("reload policy: %w", err)
	}
	if e.cache != nil {
		e.cache.clear()
	}
	return nil
}

// Close releases the enforcer.
func (e *Enforcer) Close() {
	e.enforcer.StopAutoLoadPolicy()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
