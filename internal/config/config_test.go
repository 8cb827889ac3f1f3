package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("TRUST_PROXY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.SessionDuration != 24*time.Hour {
		t.Errorf("SessionDuration = %v, want 24h", cfg.SessionDuration)
	}
	if cfg.SESEnabled() {
		t.Error("SES should be disabled without a from address")
	}
	if cfg.TrustProxy {
		t.Error("forwarded headers must not be trusted by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"9000\"\ndatabase_type: memory\njwt_issuer: from-file\ncors_origins:\n  - https://a.example\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("JWT_ISSUER", "from-env")
	t.Setenv("API_TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "https://b.example, https://c.example")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q, want 9000 from file", cfg.ServerPort)
	}
	if cfg.DatabaseType != DatabaseMemory {
		t.Errorf("DatabaseType = %q, want memory", cfg.DatabaseType)
	}
	if cfg.JWTIssuer != "from-env" {
		t.Errorf("JWTIssuer = %q, env should win", cfg.JWTIssuer)
	}
	if cfg.APITokenTTL != 15*time.Minute {
		t.Errorf("APITokenTTL = %v, want 15m", cfg.APITokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://c.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.TrustProxy {
		t.Error("TrustProxy = false, want true from env")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown database", env: map[string]string{"DATABASE_TYPE": "oracle"}},
		{name: "postgres without url", env: map[string]string{"DATABASE_TYPE": "postgres", "DATABASE_URL": ""}},
		{name: "bad duration", env: map[string]string{"SESSION_DURATION": "tomorrow"}},
		{name: "bad size", env: map[string]string{"UPLOAD_MAX_SIZE": "big"}},
		{name: "bad bool", env: map[string]string{"DEBUG": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
