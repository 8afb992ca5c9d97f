package app_test

import (
	"context"
	"errors"
	"testing"

	"hotspotd/internal/adapter/memory"
	"hotspotd/internal/app"
	"hotspotd/internal/domain"
)

func TestAddUser_Idempotent(t *testing.T) {
	device := memory.NewDevice()
	svc := app.NewSessionService(device)
	ctx := context.Background()

	if err := svc.AddUser(ctx, "AA:BB:CC:DD:EE:FF", "AA:BB:CC:DD:EE:FF", "4h"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := svc.AddUser(ctx, "AA:BB:CC:DD:EE:FF", "AA:BB:CC:DD:EE:FF", "4h"); err != nil {
		t.Fatalf("second create: %v", err)
	}

	if got := device.Calls["AddUser"]; got != 1 {
		t.Errorf("expected exactly one device add call, got %d", got)
	}
	if got := len(device.Users()); got != 1 {
		t.Errorf("expected exactly one account on device, got %d", got)
	}
}

func TestAddUser_DefaultProfile(t *testing.T) {
	device := memory.NewDevice()
	svc := app.NewSessionService(device)

	if err := svc.AddUser(context.Background(), "u1", "p1", "2h"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	users := device.Users()
	if len(users) != 1 || users[0].Profile != "default" || users[0].UptimeLimit != "2h" {
		t.Errorf("unexpected account: %+v", users)
	}
}

func TestAccountExists_ReapsExpired(t *testing.T) {
	device := memory.NewDevice()
	device.SeedUser(domain.UserAccount{
		Name: "AA:BB:CC:DD:EE:FF", Uptime: "4h", UptimeLimit: "4h",
	})
	svc := app.NewSessionService(device)

	exists, err := svc.AccountExists(context.Background(), "AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected expired account to be reported absent")
	}
	if got := device.Calls["RemoveUser"]; got != 1 {
		t.Errorf("expected exactly one remove call, got %d", got)
	}
	if got := len(device.Users()); got != 0 {
		t.Errorf("expected account removed from device, got %d", got)
	}
}

func TestAccountExists_UnlimitedNeverExpires(t *testing.T) {
	device := memory.NewDevice()
	device.SeedUser(domain.UserAccount{
		Name: "u1", Uptime: "5w", UptimeLimit: "0s",
	})
	svc := app.NewSessionService(device)

	exists, err := svc.AccountExists(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("account with zero limit must never be reaped")
	}
	if got := device.Calls["RemoveUser"]; got != 0 {
		t.Errorf("expected no remove call, got %d", got)
	}
}

func TestRemoveActiveSessionsByMAC(t *testing.T) {
	device := memory.NewDevice()
	device.SeedSession(domain.ActiveSession{User: "a", MAC: "AA:BB:CC:DD:EE:FF", Address: "10.0.0.5"})
	device.SeedSession(domain.ActiveSession{User: "a", MAC: "aa:bb:cc:dd:ee:ff", Address: "10.0.0.6"})
	device.SeedSession(domain.ActiveSession{User: "b", MAC: "11:22:33:44:55:66", Address: "10.0.0.7"})
	svc := app.NewSessionService(device)

	if !svc.RemoveActiveSessionsByMAC(context.Background(), "AA:BB:CC:DD:EE:FF") {
		t.Fatal("expected cleanup to succeed")
	}
	left := device.Sessions()
	if len(left) != 1 || left[0].MAC != "11:22:33:44:55:66" {
		t.Errorf("expected only the unrelated session to remain, got %+v", left)
	}
}

func TestRemoveActiveSessions_NoneIsSuccess(t *testing.T) {
	svc := app.NewSessionService(memory.NewDevice())
	if !svc.RemoveActiveSessionsByIP(context.Background(), "10.0.0.5") {
		t.Error("no matching sessions must report success")
	}
}

func TestLogin_ResolvesFromHostTable(t *testing.T) {
	device := memory.NewDevice()
	device.SeedHost(domain.HostBinding{
		MAC: "AA:BB:CC:DD:EE:FF", Address: "10.0.0.5", ToAddress: "192.168.88.10",
	})
	svc := app.NewSessionService(device)

	// The caller-supplied address is advisory only; the host table wins.
	if err := svc.Login(context.Background(), "AA:BB:CC:DD:EE:FF", "10.9.9.9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessions := device.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	if sessions[0].Address != "192.168.88.10" {
		t.Errorf("expected translated address from host table, got %s", sessions[0].Address)
	}
}

func TestLogin_AdvisoryAddressFallback(t *testing.T) {
	device := memory.NewDevice()
	svc := app.NewSessionService(device)

	if err := svc.Login(context.Background(), "AA:BB:CC:DD:EE:FF", "10.0.0.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessions := device.Sessions()
	if len(sessions) != 1 || sessions[0].Address != "10.0.0.5" {
		t.Errorf("expected fallback to caller-supplied address, got %+v", sessions)
	}
}

func TestLogin_HostNotFound(t *testing.T) {
	svc := app.NewSessionService(memory.NewDevice())

	err := svc.Login(context.Background(), "AA:BB:CC:DD:EE:FF", "")
	if !errors.Is(err, domain.ErrHostNotFound) {
		t.Errorf("expected ErrHostNotFound, got %v", err)
	}
}

func TestLogin_RemovesStaleSessionFirst(t *testing.T) {
	device := memory.NewDevice()
	device.SeedSession(domain.ActiveSession{User: "AA:BB:CC:DD:EE:FF", MAC: "AA:BB:CC:DD:EE:FF", Address: "10.0.0.4"})
	device.SeedHost(domain.HostBinding{MAC: "AA:BB:CC:DD:EE:FF", Address: "10.0.0.5"})
	svc := app.NewSessionService(device)

	if err := svc.Login(context.Background(), "AA:BB:CC:DD:EE:FF", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessions := device.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected stale session replaced, got %d sessions", len(sessions))
	}
	if sessions[0].Address != "10.0.0.5" {
		t.Errorf("expected fresh binding, got %+v", sessions[0])
	}
}

func TestLogin_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		deviceErr error
		want      error
	}{
		{"uptime limit", &domain.DeviceError{Message: "Your uptime limit is reached"}, domain.ErrReAddRequired},
		{"no such user", &domain.DeviceError{Message: "invalid username or password: No such user (aa:bb)"}, domain.ErrUserNotFound},
		{"unknown host", &domain.DeviceError{Message: "unknown host IP 10.0.0.5"}, domain.ErrUnknownHost},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			device := memory.NewDevice()
			device.SeedHost(domain.HostBinding{MAC: "AA:BB", Address: "10.0.0.5"})
			device.LoginErrs = []error{tc.deviceErr}
			svc := app.NewSessionService(device)

			err := svc.Login(context.Background(), "AA:BB", "")
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLogin_ConnectionRefusedClassification(t *testing.T) {
	device := memory.NewDevice()
	device.SeedHost(domain.HostBinding{MAC: "AA:BB", Address: "10.0.0.5"})
	device.LoginErrs = []error{&domain.DeviceError{Message: "dial tcp 10.0.0.1:8728: connection refused"}}
	svc := app.NewSessionService(device)

	err := svc.Login(context.Background(), "AA:BB", "")
	var connErr *domain.ConnectionError
	if !errors.As(err, &connErr) {
		t.Errorf("expected ConnectionError, got %v", err)
	}
}

func TestLogin_UnclassifiedKeepsRawMessage(t *testing.T) {
	device := memory.NewDevice()
	device.SeedHost(domain.HostBinding{MAC: "AA:BB", Address: "10.0.0.5"})
	device.LoginErrs = []error{&domain.DeviceError{Message: "radius server not responding"}}
	svc := app.NewSessionService(device)

	err := svc.Login(context.Background(), "AA:BB", "")
	var devErr *domain.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError passthrough, got %v", err)
	}
	if devErr.Message != "radius server not responding" {
		t.Errorf("raw message not preserved: %q", devErr.Message)
	}
}

func TestDisconnectUser(t *testing.T) {
	device := memory.NewDevice()
	device.SeedSession(domain.ActiveSession{User: "u1", MAC: "AA:BB", Address: "10.0.0.5"})
	svc := app.NewSessionService(device)

	disconnected, err := svc.DisconnectUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !disconnected {
		t.Error("expected disconnect to report true")
	}
	if got := len(device.Sessions()); got != 0 {
		t.Errorf("expected no sessions left, got %d", got)
	}

	disconnected, err = svc.DisconnectUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if disconnected {
		t.Error("expected false when no active session exists")
	}
}

func TestRemoveUser(t *testing.T) {
	device := memory.NewDevice()
	device.SeedUser(domain.UserAccount{Name: "u1"})
	svc := app.NewSessionService(device)

	removed, err := svc.RemoveUser(context.Background(), "u1")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	removed, err = svc.RemoveUser(context.Background(), "u1")
	if err != nil || removed {
		t.Fatalf("expected no-op for absent user, got removed=%v err=%v", removed, err)
	}
}
