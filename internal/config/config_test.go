package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected default ENV to be development")
	}
	if cfg.ResolvedAuthMode() != "header" {
		t.Errorf("expected header auth in development, got %q", cfg.ResolvedAuthMode())
	}
}

func TestLoad_AdminAccountsSplit(t *testing.T) {
	setEnv(t, "ADMIN_ACCOUNTS", "ADM-001,ADM-002")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AdminAccounts) != 2 || cfg.AdminAccounts[0] != "ADM-001" || cfg.AdminAccounts[1] != "ADM-002" {
		t.Errorf("expected [ADM-001 ADM-002], got %v", cfg.AdminAccounts)
	}
}

func TestValidate_TokenModeNeedsVerificationSource(t *testing.T) {
	cfg := &Config{Env: "production", AdminAccounts: []string{"ADM-001"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for token mode without signing key or JWKS")
	}

	cfg.AuthSigningKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config with signing key, got %v", err)
	}
}

func TestValidate_ProductionNeedsAdmins(t *testing.T) {
	cfg := &Config{Env: "production", AuthSigningKey: "secret"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production without ADMIN_ACCOUNTS")
	}
}

func TestValidate_RejectsUnknownAuthMode(t *testing.T) {
	cfg := &Config{Env: "development", AuthMode: "oauth-dance"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown auth mode")
	}
}
