package config

import (
	"strings"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TRANSACTION_FEE_PERCENTAGE", "0.05")
	t.Setenv("TOKEN_VALUE_FIAT", "1.0")
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
}

func TestLoadDevDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev environment, got %q", cfg.AppEnv)
	}
	if cfg.FeeRatio != 0.05 {
		t.Fatalf("expected fee ratio 0.05, got %v", cfg.FeeRatio)
	}
	if cfg.TokenValue != 1.0 {
		t.Fatalf("expected token value 1.0, got %v", cfg.TokenValue)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected default address :8080, got %q", cfg.Address())
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

func TestLoadRejectsBadMoneyParams(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"fee above one", "TRANSACTION_FEE_PERCENTAGE", "1.5"},
		{"negative fee", "TRANSACTION_FEE_PERCENTAGE", "-0.1"},
		{"fee not a number", "TRANSACTION_FEE_PERCENTAGE", "five percent"},
		{"missing fee", "TRANSACTION_FEE_PERCENTAGE", ""},
		{"zero token value", "TOKEN_VALUE_FIAT", "0"},
		{"negative token value", "TOKEN_VALUE_FIAT", "-2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoadRequiresBackendsOutsideDev(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tokengrid")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "REDIS_URL") {
		t.Fatalf("expected REDIS_URL error, got %v", err)
	}
}
