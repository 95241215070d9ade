package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
jwt:
  secret: short
  expire_hours: 3
storage:
  type: minio
quiz:
  max_questions: 20
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.APIPrefix != "/api" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.JWT.ExpireTime != 3*time.Hour {
		t.Errorf("expire = %v", cfg.JWT.ExpireTime)
	}
	if cfg.Quiz.MaxQuestions != 20 || cfg.Quiz.DefaultQuestions != 5 {
		t.Errorf("quiz = %+v", cfg.Quiz)
	}
	if cfg.Analytics.LockWait() != 10*time.Second {
		t.Errorf("lock wait = %v", cfg.Analytics.LockWait())
	}
	if cfg.Path != filepath.Join(dir, "config.yaml") {
		t.Errorf("path = %q", cfg.Path)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "jwt:\n  secret: from-file\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("STORAGE_TYPE", "oss")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWT.Secret != "from-env" || cfg.Server.Port != "7000" || cfg.Storage.Type != "oss" {
		t.Errorf("env not applied: jwt=%q port=%q storage=%q", cfg.JWT.Secret, cfg.Server.Port, cfg.Storage.Type)
	}
}

func TestLoadConfig_SecretRules(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"missing secret", "storage:\n  type: oss\n", true},
		{"short secret in release", "server:\n  mode: release\njwt:\n  secret: short\nstorage:\n  type: oss\n", true},
		{"long secret in release", "server:\n  mode: release\njwt:\n  secret: 0123456789abcdef0123456789abcdef\nstorage:\n  type: oss\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
