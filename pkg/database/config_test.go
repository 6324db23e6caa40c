package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Jayden3422/voice-assistant/pkg/database"
)

func validConfig() database.Config {
	return database.Config{Name: "autopilot", User: "autopilot"}
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "localhost" {
		t.Errorf("host: got %s, want localhost", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("port: got %d, want 5432", cfg.Port)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("ssl_mode: got %s, want disable", cfg.SSLMode)
	}
	if cfg.MaxOpenConns != 25 {
		t.Errorf("max_open_conns: got %d, want 25", cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime != "15m" {
		t.Errorf("conn_max_lifetime: got %s, want 15m", cfg.ConnMaxLifetime)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "dbhost")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_PASSWORD", "secret")

	env := &database.Env{
		Host:     "TEST_DB_HOST",
		Port:     "TEST_DB_PORT",
		Password: "TEST_DB_PASSWORD",
	}

	cfg := validConfig()
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "dbhost" {
		t.Errorf("host: got %s, want dbhost", cfg.Host)
	}
	if cfg.Port != 5433 {
		t.Errorf("port: got %d, want 5433", cfg.Port)
	}
	if cfg.Password != "secret" {
		t.Errorf("password: got %s, want secret", cfg.Password)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "autopilot"}, "name required"},
		{"missing user", database.Config{Name: "autopilot"}, "user required"},
		{
			"invalid conn_timeout",
			database.Config{Name: "autopilot", User: "autopilot", ConnTimeout: "bad"},
			"invalid conn_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "autopilot", User: "autopilot"}
	overlay := database.Config{Host: "prodhost", Password: "secret"}
	base.Merge(&overlay)

	if base.Host != "prodhost" {
		t.Errorf("host: got %s, want prodhost", base.Host)
	}
	if base.Port != 5432 {
		t.Errorf("port: got %d, want 5432 (unchanged)", base.Port)
	}
	if base.Password != "secret" {
		t.Errorf("password: got %s, want secret", base.Password)
	}
}

func TestDSN(t *testing.T) {
	cfg := database.Config{
		Host: "localhost", Port: 5432, Name: "autopilot",
		User: "autopilot", Password: "pw", SSLMode: "disable",
	}

	want := "host=localhost port=5432 dbname=autopilot user=autopilot password=pw sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestDurations(t *testing.T) {
	cfg := database.Config{ConnMaxLifetime: "15m", ConnTimeout: "5s"}

	if d := cfg.ConnMaxLifetimeDuration(); d != 15*time.Minute {
		t.Errorf("conn_max_lifetime: got %v, want 15m", d)
	}
	if d := cfg.ConnTimeoutDuration(); d != 5*time.Second {
		t.Errorf("conn_timeout: got %v, want 5s", d)
	}
}
