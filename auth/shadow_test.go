package auth

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestShadowFileAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "shadow")
	content := "alice:" + string(hash) + "\n# comment\n\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewShadowFile(path)

	ok, diag, delay, err := s.Authenticate("alice", "s3cret")
	if err != nil || !ok || delay != 0 || diag != "" {
		t.Fatalf("Authenticate(correct) = %v, %q, %v, %v", ok, diag, delay, err)
	}

	ok, diag, delay, err = s.Authenticate("alice", "wrong")
	if err != nil || ok || delay == 0 || diag != "bad password" {
		t.Fatalf("Authenticate(wrong) = %v, %q, %v, %v", ok, diag, delay, err)
	}

	ok, diag, _, err = s.Authenticate("nobody", "x")
	if err != nil || ok || diag != "bad password" {
		t.Fatalf("Authenticate(unknown user) = %v, %q, %v", ok, diag, err)
	}
}
