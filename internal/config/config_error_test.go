package config

import "testing"

func Test_Load_ErrorOnBadDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "bad")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func Test_Load_ErrorOnUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "palm")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func Test_Load_ErrorOnUnknownBackupProvider(t *testing.T) {
	t.Setenv("LLM_BACKUP_PROVIDER", "bard")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backup provider")
	}
}
