package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStatic(t *testing.T) {
	token, ok := Static("abc123").Token()
	if !ok || token != "abc123" {
		t.Errorf("Token() = %q, %v; want %q, true", token, ok, "abc123")
	}

	if _, ok := Static("").Token(); ok {
		t.Error("empty static token should report absence")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("TEST_SAMM_AUTH_TOKEN", "env-token")

	token, ok := Env{Var: "TEST_SAMM_AUTH_TOKEN"}.Token()
	if !ok || token != "env-token" {
		t.Errorf("Token() = %q, %v; want %q, true", token, ok, "env-token")
	}

	if _, ok := (Env{Var: "TEST_SAMM_AUTH_MISSING"}).Token(); ok {
		t.Error("unset variable should report absence")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  file-token\n"), 0600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	token, ok := File{Path: path}.Token()
	if !ok || token != "file-token" {
		t.Errorf("Token() = %q, %v; want %q, true", token, ok, "file-token")
	}
}

func TestFileMissing(t *testing.T) {
	if _, ok := (File{Path: filepath.Join(t.TempDir(), "nope")}).Token(); ok {
		t.Error("missing file should report absence")
	}
}

func TestFileRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("first"), 0600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	provider := File{Path: path}
	if token, _ := provider.Token(); token != "first" {
		t.Fatalf("Token() = %q, want %q", token, "first")
	}

	if err := os.WriteFile(path, []byte("second"), 0600); err != nil {
		t.Fatalf("rewrite token file: %v", err)
	}
	if token, _ := provider.Token(); token != "second" {
		t.Errorf("Token() after rotation = %q, want %q", token, "second")
	}
}
