// Package memory implements in-memory fakes for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hotspotd/internal/domain"
)

// Device is an in-memory stand-in for a hotspot device. It keeps the same
// three tables the real device exposes (user accounts, active sessions, host
// bindings) and lets tests script login failures and inspect per-operation
// call counts.
type Device struct {
	mu       sync.Mutex
	users    []domain.UserAccount
	sessions []domain.ActiveSession
	hosts    []domain.HostBinding

	userIDCounter    int64
	sessionIDCounter int64

	// LoginErrs is consumed one element per Login call; a nil entry means
	// that call succeeds. Once exhausted, further logins succeed.
	LoginErrs []error

	// Calls counts invocations per operation name.
	Calls map[string]int
}

// NewDevice creates an empty fake device.
func NewDevice() *Device {
	return &Device{Calls: make(map[string]int)}
}

// Ensure interfaces are met.
var _ domain.DeviceClient = (*Device)(nil)

// SeedUser inserts an account, assigning a device-style id.
func (d *Device) SeedUser(u domain.UserAccount) domain.UserAccount {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userIDCounter++
	u.ID = fmt.Sprintf("*%d", d.userIDCounter)
	d.users = append(d.users, u)
	return u
}

// SeedSession inserts an active session, assigning a device-style id.
func (d *Device) SeedSession(s domain.ActiveSession) domain.ActiveSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessionIDCounter++
	s.ID = fmt.Sprintf("*%d", d.sessionIDCounter)
	d.sessions = append(d.sessions, s)
	return s
}

// SeedHost inserts a host binding.
func (d *Device) SeedHost(h domain.HostBinding) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hosts = append(d.hosts, h)
}

// Users returns a copy of the account table.
func (d *Device) Users() []domain.UserAccount {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.UserAccount, len(d.users))
	copy(out, d.users)
	return out
}

// Sessions returns a copy of the active-session table.
func (d *Device) Sessions() []domain.ActiveSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.ActiveSession, len(d.sessions))
	copy(out, d.sessions)
	return out
}

// --- DeviceClient ---

// FindUser retrieves an account by name.
func (d *Device) FindUser(ctx context.Context, name string) (*domain.UserAccount, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls["FindUser"]++
	for i := range d.users {
		if strings.EqualFold(d.users[i].Name, name) {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// AddUser appends an account, assigning a new id.
func (d *Device) AddUser(ctx context.Context, u domain.UserAccount) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls["AddUser"]++
	d.userIDCounter++
	u.ID = fmt.Sprintf("*%d", d.userIDCounter)
	d.users = append(d.users, u)
	return nil
}

// RemoveUser removes an account by id.
func (d *Device) RemoveUser(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls["RemoveUser"]++
	for i := range d.users {
		if d.users[i].ID == id {
			d.users = append(d.users[:i], d.users[i+1:]...)
			return nil
		}
	}
	return &domain.DeviceError{Message: "no such item"}
}

// ActiveSessions lists sessions matching the filter; an empty filter matches
// everything. Matching is case-insensitive, as on the device.
func (d *Device) ActiveSessions(ctx context.Context, f domain.SessionFilter) ([]domain.ActiveSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls["ActiveSessions"]++
	var out []domain.ActiveSession
	for _, s := range d.sessions {
		switch {
		case f.User != "" && !strings.EqualFold(s.User, f.User):
		case f.MAC != "" && !strings.EqualFold(s.MAC, f.MAC):
		case f.Address != "" && !strings.EqualFold(s.Address, f.Address):
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

// RemoveActiveSession removes a session by id.
func (d *Device) RemoveActiveSession(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls["RemoveActiveSession"]++
	for i := range d.sessions {
		if d.sessions[i].ID == id {
			d.sessions = append(d.sessions[:i], d.sessions[i+1:]...)
			return nil
		}
	}
	return &domain.DeviceError{Message: "no such item"}
}

// Login establishes a session, consuming the next scripted error if any.
func (d *Device) Login(ctx context.Context, req domain.LoginRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls["Login"]++
	if len(d.LoginErrs) > 0 {
		err := d.LoginErrs[0]
		d.LoginErrs = d.LoginErrs[1:]
		if err != nil {
			return err
		}
	}
	d.sessionIDCounter++
	d.sessions = append(d.sessions, domain.ActiveSession{
		ID:      fmt.Sprintf("*%d", d.sessionIDCounter),
		User:    req.User,
		MAC:     req.MAC,
		Address: req.Address,
	})
	return nil
}

// FindHost retrieves a host binding by MAC.
func (d *Device) FindHost(ctx context.Context, mac string) (*domain.HostBinding, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls["FindHost"]++
	for i := range d.hosts {
		if strings.EqualFold(d.hosts[i].MAC, mac) {
			h := d.hosts[i]
			return &h, nil
		}
	}
	return nil, nil
}

// --- CommandJournal ---

// Journal is an in-memory command-outcome journal.
type Journal struct {
	mu        sync.Mutex
	entries   []domain.JournalEntry
	idCounter int64
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

var _ domain.CommandJournal = (*Journal)(nil)

// Append records one executed command outcome.
func (j *Journal) Append(ctx context.Context, e domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.idCounter++
	e.ID = j.idCounter
	j.entries = append(j.entries, e)
	return nil
}

// Recent returns the most recent entries up to limit, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]domain.JournalEntry, len(j.entries))
	copy(out, j.entries)
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID > out[k].ID
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
