package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cheatbot/internal/infra/config"
)

func TestCheckConfigFile_NotFound(t *testing.T) {
	fn := checkConfigFile(filepath.Join(t.TempDir(), "config.yaml"), nil)
	if result := fn(nil); result.Status != StatusWarn {
		t.Errorf("expected WARN for missing config, got %s", result.Status)
	}
}

func TestCheckConfigFile_LoadError(t *testing.T) {
	fn := checkConfigFile("config.yaml", &config.ValidationError{Errors: []string{"bad"}})
	result := fn(nil)
	if result.Status != StatusFail {
		t.Errorf("expected FAIL for load error, got %s", result.Status)
	}
	if result.Fix == "" {
		t.Error("expected fix suggestion")
	}
}

func TestCheckConfigFile_Valid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("bot:\n  prefix: \"!\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if result := checkConfigFile(cfgPath, nil)(nil); result.Status != StatusPass {
		t.Errorf("expected PASS, got %s: %s", result.Status, result.Message)
	}
}

func TestCheckSurfaces(t *testing.T) {
	if result := checkSurfaces(nil); result.Status != StatusFail {
		t.Errorf("nil config: got %s", result.Status)
	}

	cfg := config.Defaults()
	if result := checkSurfaces(cfg); result.Status != StatusFail {
		t.Errorf("missing token: got %s", result.Status)
	}

	cfg.Discord.Token = "tok"
	result := checkSurfaces(cfg)
	if result.Status != StatusPass || result.Message != "enabled: discord" {
		t.Errorf("got %s: %s", result.Status, result.Message)
	}
}

func TestCheckGating(t *testing.T) {
	cfg := config.Defaults()
	if result := checkGating(cfg); result.Status != StatusPass {
		t.Errorf("defaults: got %s", result.Status)
	}

	cfg.Command.AllowedCategories = nil
	cfg.Command.WhitelistedChannels = nil
	result := checkGating(cfg)
	if result.Status != StatusWarn {
		t.Errorf("open command: got %s", result.Status)
	}
	if result.Message != ".cheat is open in every channel" {
		t.Errorf("message = %q", result.Message)
	}
}

func TestCheckCheatSh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/:help" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte("help"))
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.CheatSh.BaseURL = srv.URL
	if result := checkCheatSh(srv.Client())(cfg); result.Status != StatusPass {
		t.Errorf("got %s: %s", result.Status, result.Message)
	}
}

func TestCheckCheatSh_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.CheatSh.BaseURL = srv.URL
	if result := checkCheatSh(srv.Client())(cfg); result.Status != StatusWarn {
		t.Errorf("got %s: %s", result.Status, result.Message)
	}
}

func TestCheckCheatSh_Unreachable(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})}
	cfg := config.Defaults()
	cfg.CheatSh.Timeout = time.Second
	result := checkCheatSh(client)(cfg)
	if result.Status != StatusFail || result.Fix == "" {
		t.Errorf("got %s: %s", result.Status, result.Message)
	}
}

func TestStatusIcon(t *testing.T) {
	tests := map[CheckStatus]string{
		StatusPass: "[PASS]",
		StatusWarn: "[WARN]",
		StatusFail: "[FAIL]",
		"other":    "[????]",
	}
	for status, want := range tests {
		if got := statusIcon(status); got != want {
			t.Errorf("statusIcon(%q) = %q, want %q", status, got, want)
		}
	}
}
