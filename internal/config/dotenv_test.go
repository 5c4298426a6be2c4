package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv_NotExist(t *testing.T) {
	m, err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(p, []byte("# comment\nA=1\nB=two\n\nbroken line\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadDotEnv(p)
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if m["A"] != "1" || m["B"] != "two" || len(m) != 2 {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestApplyDotEnv_EnvWins(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	body := "OCRQA_TEST_SET=fromdotenv\nOCRQA_TEST_KEEP=fromdotenv\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OCRQA_TEST_KEEP", "fromenv")
	t.Setenv("OCRQA_TEST_SET", "")

	if err := ApplyDotEnv(p); err != nil {
		t.Fatalf("ApplyDotEnv: %v", err)
	}
	if got := os.Getenv("OCRQA_TEST_SET"); got != "fromdotenv" {
		t.Fatalf("unset key not applied: %q", got)
	}
	if got := os.Getenv("OCRQA_TEST_KEEP"); got != "fromenv" {
		t.Fatalf("environment override lost: %q", got)
	}
}
