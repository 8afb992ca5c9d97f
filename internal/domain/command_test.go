package domain_test

import (
	"testing"

	"hotspotd/internal/domain"
)

func TestCommandParamFallback(t *testing.T) {
	cmd := domain.Command{Params: map[string]string{"time": "4h"}}

	if got := cmd.Param("time_limit", "time"); got != "4h" {
		t.Errorf("expected fallback key to be consulted, got %q", got)
	}
	if got := cmd.Param("username"); got != "" {
		t.Errorf("expected empty value for absent key, got %q", got)
	}

	cmd.Params["time_limit"] = "2h"
	if got := cmd.Param("time_limit", "time"); got != "2h" {
		t.Errorf("expected preferred key to win, got %q", got)
	}
}

func TestResultConstructors(t *testing.T) {
	ok := domain.Success("user %s added", "AA:BB")
	if ok.Status != domain.StatusSuccess || ok.Message != "user AA:BB added" {
		t.Errorf("unexpected success result: %+v", ok)
	}
	bad := domain.Failure("missing parameters")
	if bad.Status != domain.StatusError || bad.Message != "missing parameters" {
		t.Errorf("unexpected error result: %+v", bad)
	}
}
