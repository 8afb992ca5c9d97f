// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
)

// UserAccount is a hotspot account on the device. Duration fields keep the
// device-native string form ("2h30m"); ParseRouterDuration decodes them.
// By deployment convention the username is the client's MAC address and the
// password equals the username.
type UserAccount struct {
	ID          string
	Name        string
	Password    string
	Profile     string
	UptimeLimit string
	Uptime      string
}

// ActiveSession is a live authenticated binding of a user to an address,
// identified by a device-assigned id.
type ActiveSession struct {
	ID      string
	User    string
	MAC     string
	Address string
}

// HostBinding is the device's observed MAC-to-address mapping. ToAddress
// carries the translated (NAT) address when the device reports one.
type HostBinding struct {
	MAC       string
	Address   string
	ToAddress string
}

// SessionFilter is a one-field equality predicate on the active-session
// table. At most one field should be set; an empty filter matches everything.
type SessionFilter struct {
	User    string
	MAC     string
	Address string
}

// LoginRequest carries the parameters of the device's session-login action.
type LoginRequest struct {
	User     string
	Password string
	MAC      string
	Address  string
}

// DeviceClient defines the port for the device control surface: the hotspot
// user, active-session and host tables. Implementations open their own
// connection per operation; callers never see connection state.
type DeviceClient interface {
	FindUser(ctx context.Context, name string) (*UserAccount, error)
	AddUser(ctx context.Context, u UserAccount) error
	RemoveUser(ctx context.Context, id string) error
	ActiveSessions(ctx context.Context, f SessionFilter) ([]ActiveSession, error)
	RemoveActiveSession(ctx context.Context, id string) error
	Login(ctx context.Context, req LoginRequest) error
	FindHost(ctx context.Context, mac string) (*HostBinding, error)
}
