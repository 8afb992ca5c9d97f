// Package routeros adapts the go-routeros API client to the device control
// port.
package routeros

import (
	"context"
	"strings"
	"time"

	ros "github.com/go-routeros/routeros/v3"

	"hotspotd/internal/domain"
)

// Client drives the device's /ip/hotspot resource tree. Every operation
// dials its own connection and closes it before returning: the device API
// offers no transactional guarantees worth pooling for, and a half-dead
// pooled connection would otherwise poison every later call.
type Client struct {
	address  string
	username string
	password string
	timeout  time.Duration
}

// New creates a device client. timeout bounds the dial of each operation.
func New(address, username, password string, timeout time.Duration) *Client {
	return &Client{
		address:  address,
		username: username,
		password: password,
		timeout:  timeout,
	}
}

var _ domain.DeviceClient = (*Client)(nil)

func (c *Client) dial() (*ros.Client, error) {
	conn, err := ros.DialTimeout(c.address, c.username, c.password, c.timeout)
	if err != nil {
		return nil, &domain.ConnectionError{Cause: err}
	}
	return conn, nil
}

// wrapRunErr converts a failed API call into a DeviceError carrying the
// device's message verbatim. The session manager classifies that prose.
func wrapRunErr(err error) error {
	if err == nil {
		return nil
	}
	return &domain.DeviceError{Message: err.Error()}
}

// FindUser retrieves the hotspot account with the given name.
func (c *Client) FindUser(ctx context.Context, name string) (*domain.UserAccount, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reply, err := conn.Run("/ip/hotspot/user/print", "?name="+name)
	if err != nil {
		return nil, wrapRunErr(err)
	}
	if len(reply.Re) == 0 {
		return nil, nil
	}
	m := reply.Re[0].Map
	return &domain.UserAccount{
		ID:          m[".id"],
		Name:        m["name"],
		Password:    m["password"],
		Profile:     m["profile"],
		UptimeLimit: m["limit-uptime"],
		Uptime:      m["uptime"],
	}, nil
}

// AddUser creates a hotspot account.
func (c *Client) AddUser(ctx context.Context, u domain.UserAccount) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Run("/ip/hotspot/user/add",
		"=name="+u.Name,
		"=password="+u.Password,
		"=profile="+u.Profile,
		"=limit-uptime="+u.UptimeLimit,
	)
	return wrapRunErr(err)
}

// RemoveUser removes a hotspot account by device id.
func (c *Client) RemoveUser(ctx context.Context, id string) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Run("/ip/hotspot/user/remove", "=.id="+id)
	return wrapRunErr(err)
}

// ActiveSessions lists active hotspot sessions matching the filter. The full
// table is fetched and filtered here: the device compares query words
// case-sensitively while MAC addresses arrive in either case.
func (c *Client) ActiveSessions(ctx context.Context, f domain.SessionFilter) ([]domain.ActiveSession, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reply, err := conn.Run("/ip/hotspot/active/print")
	if err != nil {
		return nil, wrapRunErr(err)
	}

	var out []domain.ActiveSession
	for _, re := range reply.Re {
		s := domain.ActiveSession{
			ID:      re.Map[".id"],
			User:    re.Map["user"],
			MAC:     re.Map["mac-address"],
			Address: re.Map["address"],
		}
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

// RemoveActiveSession removes an active session by device id.
func (c *Client) RemoveActiveSession(ctx context.Context, id string) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Run("/ip/hotspot/active/remove", "=.id="+id)
	return wrapRunErr(err)
}

// Login invokes the device's session-login action.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Run("/ip/hotspot/active/login",
		"=user="+req.User,
		"=password="+req.Password,
		"=mac-address="+req.MAC,
		"=ip="+req.Address,
	)
	return wrapRunErr(err)
}

// FindHost retrieves the host binding observed for the given MAC.
func (c *Client) FindHost(ctx context.Context, mac string) (*domain.HostBinding, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reply, err := conn.Run("/ip/hotspot/host/print")
	if err != nil {
		return nil, wrapRunErr(err)
	}
	for _, re := range reply.Re {
		if strings.EqualFold(re.Map["mac-address"], mac) {
			return &domain.HostBinding{
				MAC:       re.Map["mac-address"],
				Address:   re.Map["address"],
				ToAddress: re.Map["to-address"],
			}, nil
		}
	}
	return nil, nil
}
