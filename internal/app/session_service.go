// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hotspotd/internal/domain"
)

// Profile assigned to every account this agent creates.
const defaultProfile = "default"

// SessionService is the hotspot session state machine. It holds no state of
// its own between calls; the device's user, active-session and host tables
// are authoritative and are re-read on every operation.
type SessionService struct {
	device domain.DeviceClient
}

// NewSessionService creates a session service driving the given device.
func NewSessionService(device domain.DeviceClient) *SessionService {
	return &SessionService{device: device}
}

// AccountExists reports whether an unexpired account with the given username
// is present on the device. An account whose accrued uptime has reached its
// nonzero limit is removed as a side effect and reported as absent; this lazy
// check is the only place expired accounts are reaped.
func (s *SessionService) AccountExists(ctx context.Context, username string) (bool, error) {
	u, err := s.device.FindUser(ctx, username)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}

	uptime := domain.ParseRouterDuration(u.Uptime)
	limit := domain.ParseRouterDuration(u.UptimeLimit)
	if limit != 0 && uptime >= limit {
		if err := s.device.RemoveUser(ctx, u.ID); err != nil {
			return false, err
		}
		slog.Info("removed expired hotspot account",
			"username", username, "uptime_s", uptime, "limit_s", limit)
		return false, nil
	}
	return true, nil
}

// AddUser creates a hotspot account with the given uptime limit and the
// default profile. An unexpired account with the same name already satisfies
// the request: the call is a no-op, never an error and never a duplicate.
func (s *SessionService) AddUser(ctx context.Context, username, password, uptimeLimit string) error {
	exists, err := s.AccountExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		slog.Debug("account already present, create is a no-op", "username", username)
		return nil
	}
	return s.device.AddUser(ctx, domain.UserAccount{
		Name:        username,
		Password:    password,
		Profile:     defaultProfile,
		UptimeLimit: uptimeLimit,
	})
}

// RemoveUser removes the account with the given username. It reports false
// when no such account existed.
func (s *SessionService) RemoveUser(ctx context.Context, username string) (bool, error) {
	u, err := s.device.FindUser(ctx, username)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	if err := s.device.RemoveUser(ctx, u.ID); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveActiveSessionsByMAC tears down every active session bound to the
// given MAC. It returns true when none existed or all removals succeeded and
// false only when the device could not be queried or a removal call failed;
// a failure on one session does not stop removal of the others.
func (s *SessionService) RemoveActiveSessionsByMAC(ctx context.Context, mac string) bool {
	return s.removeActiveSessions(ctx, domain.SessionFilter{MAC: mac})
}

// RemoveActiveSessionsByIP is the same best-effort teardown keyed by address.
// Device-side address reassignment can leave sessions a MAC-based cleanup
// misses, so callers may run both.
func (s *SessionService) RemoveActiveSessionsByIP(ctx context.Context, ip string) bool {
	return s.removeActiveSessions(ctx, domain.SessionFilter{Address: ip})
}

// DisconnectUser tears down active sessions by account name. It reports
// false when the user had no active session.
func (s *SessionService) DisconnectUser(ctx context.Context, username string) (bool, error) {
	sessions, err := s.device.ActiveSessions(ctx, domain.SessionFilter{User: username})
	if err != nil {
		return false, err
	}
	if len(sessions) == 0 {
		return false, nil
	}
	for _, sess := range sessions {
		if err := s.device.RemoveActiveSession(ctx, sess.ID); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *SessionService) removeActiveSessions(ctx context.Context, f domain.SessionFilter) bool {
	sessions, err := s.device.ActiveSessions(ctx, f)
	if err != nil {
		slog.Error("failed to list active sessions", "err", err)
		return false
	}
	if len(sessions) == 0 {
		return true
	}

	ok := true
	for _, sess := range sessions {
		if sess.ID == "" {
			slog.Warn("active session has no id, skipping removal", "user", sess.User)
			continue
		}
		if err := s.device.RemoveActiveSession(ctx, sess.ID); err != nil {
			slog.Error("failed to remove active session", "session_id", sess.ID, "err", err)
			ok = false
			continue
		}
		slog.Info("removed active session", "session_id", sess.ID, "user", sess.User)
	}
	return ok
}

// Login binds mac to an address and establishes an authenticated session.
// Any prior session for the MAC is removed first, best-effort. The address is
// re-resolved from the device's host table on every call; advisoryIP is only
// used for hosts the device has not observed yet. Account credential and MAC
// are the same string in this deployment.
func (s *SessionService) Login(ctx context.Context, mac, advisoryIP string) error {
	if !s.RemoveActiveSessionsByMAC(ctx, mac) {
		slog.Warn("proceeding with login despite session cleanup failure", "mac", mac)
	}

	ip, err := s.resolveAddress(ctx, mac, advisoryIP)
	if err != nil {
		return err
	}

	err = s.device.Login(ctx, domain.LoginRequest{
		User:     mac,
		Password: mac,
		MAC:      mac,
		Address:  ip,
	})
	if err != nil {
		return classifyLoginError(err)
	}
	slog.Info("hotspot login succeeded", "mac", mac, "ip", ip)
	return nil
}

func (s *SessionService) resolveAddress(ctx context.Context, mac, advisory string) (string, error) {
	host, err := s.device.FindHost(ctx, mac)
	if err != nil {
		return "", err
	}
	if host != nil {
		if host.ToAddress != "" {
			return host.ToAddress, nil
		}
		if host.Address != "" {
			return host.Address, nil
		}
	}
	if advisory != "" {
		slog.Warn("no host table entry, falling back to caller-supplied address",
			"mac", mac, "ip", advisory)
		return advisory, nil
	}
	return "", fmt.Errorf("%w: mac %s", domain.ErrHostNotFound, mac)
}

// classifyLoginError turns the device's error prose into actionable kinds.
// The device transport surfaces human-readable strings only, so this
// substring match is the contract; a firmware message change needs an update
// here and nowhere else. Messages that match nothing keep their raw text.
func classifyLoginError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "uptime limit"):
		return domain.ErrReAddRequired
	case strings.Contains(msg, "no such user"):
		return domain.ErrUserNotFound
	case strings.Contains(msg, "connection refused"):
		var connErr *domain.ConnectionError
		if errors.As(err, &connErr) {
			return err
		}
		return &domain.ConnectionError{Cause: err}
	case strings.Contains(msg, "unknown host"):
		return domain.ErrUnknownHost
	default:
		return err
	}
}
