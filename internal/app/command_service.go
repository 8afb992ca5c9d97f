package app

import (
	"context"
	"errors"

	"hotspotd/internal/domain"
)

// Uptime limit used when a login_user command forces a re-add without naming
// one.
const defaultUptimeLimit = "4h"

// SessionManager is the slice of the session service the interpreter drives.
type SessionManager interface {
	AddUser(ctx context.Context, username, password, uptimeLimit string) error
	Login(ctx context.Context, mac, ip string) error
	DisconnectUser(ctx context.Context, username string) (bool, error)
	RemoveUser(ctx context.Context, username string) (bool, error)
}

// CommandService maps control-server commands onto session operations and
// normalizes every outcome into a CommandResult. No error escapes Execute;
// this is the sole boundary where failures become reportable payloads.
type CommandService struct {
	sessions SessionManager
}

// NewCommandService creates a command interpreter over the given session
// manager.
func NewCommandService(sessions SessionManager) *CommandService {
	return &CommandService{sessions: sessions}
}

// Execute runs a single command and returns its normalized result.
func (s *CommandService) Execute(ctx context.Context, cmd domain.Command) domain.CommandResult {
	switch cmd.Type {
	case domain.CommandAddUser:
		return s.addUser(ctx, cmd)
	case domain.CommandLoginUser:
		return s.loginUser(ctx, cmd)
	case domain.CommandLogoutUser:
		return s.logoutUser(ctx, cmd)
	case domain.CommandRemoveUser:
		return s.removeUser(ctx, cmd)
	default:
		return domain.Failure("unknown command type: %s", cmd.Type)
	}
}

func (s *CommandService) addUser(ctx context.Context, cmd domain.Command) domain.CommandResult {
	username := cmd.Param("username")
	password := cmd.Param("password")
	limit := cmd.Param("time_limit", "time")
	if username == "" || password == "" || limit == "" {
		return domain.Failure("missing required parameters for add_user")
	}
	if err := s.sessions.AddUser(ctx, username, password, limit); err != nil {
		return domain.Failure("%v", err)
	}
	return domain.Success("user %s added successfully", username)
}

func (s *CommandService) loginUser(ctx context.Context, cmd domain.Command) domain.CommandResult {
	mac := cmd.Param("mac")
	ip := cmd.Param("ip")
	if mac == "" || ip == "" {
		return domain.Failure("missing required parameters for login_user")
	}

	err := s.sessions.Login(ctx, mac, ip)
	if errors.Is(err, domain.ErrReAddRequired) {
		// The device enforced the uptime limit server-side. Recreate the
		// account and retry the login exactly once; a second failure is
		// terminal.
		limit := cmd.Param("time_limit", "time")
		if limit == "" {
			limit = defaultUptimeLimit
		}
		if addErr := s.sessions.AddUser(ctx, mac, mac, limit); addErr != nil {
			return domain.Failure("re-add after uptime limit failed: %v", addErr)
		}
		err = s.sessions.Login(ctx, mac, ip)
	}
	if err != nil {
		return domain.Failure("%v", err)
	}
	return domain.Success("user %s logged in successfully", mac)
}

func (s *CommandService) logoutUser(ctx context.Context, cmd domain.Command) domain.CommandResult {
	username := cmd.Param("username", "mac")
	if username == "" {
		return domain.Failure("missing required parameters for logout_user")
	}
	disconnected, err := s.sessions.DisconnectUser(ctx, username)
	if err != nil {
		return domain.Failure("%v", err)
	}
	if !disconnected {
		return domain.Success("user %s had no active session", username)
	}
	return domain.Success("user %s disconnected", username)
}

func (s *CommandService) removeUser(ctx context.Context, cmd domain.Command) domain.CommandResult {
	username := cmd.Param("username")
	if username == "" {
		return domain.Failure("missing required parameters for remove_user")
	}
	removed, err := s.sessions.RemoveUser(ctx, username)
	if err != nil {
		return domain.Failure("%v", err)
	}
	if !removed {
		return domain.Success("user %s did not exist", username)
	}
	return domain.Success("user %s removed", username)
}
