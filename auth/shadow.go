package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ShadowFile is a bundled example Authenticator backed by a flat file of
// "name:bcryptHash" lines. It is NOT a PAM or crypt(3)/shadow(5)
// implementation — those are out of scope per spec.md §1 — it exists so
// the server has something runnable without wiring in a real backend.
type ShadowFile struct {
	Path string
	// FailDelay is returned for every failed attempt, matching the delay
	// gate example in spec.md §4.4. Zero disables the delay.
	FailDelay time.Duration
}

func NewShadowFile(path string) *ShadowFile {
	return &ShadowFile{Path: path, FailDelay: time.Second}
}

func (s *ShadowFile) Authenticate(name, password string) (bool, string, time.Duration, error) {
	hash, ok, err := s.lookup(name)
	if err != nil {
		return false, "bad password", s.FailDelay, err
	}
	if !ok {
		return false, "bad password", s.FailDelay, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, "bad password", s.FailDelay, nil
	}
	return true, "", 0, nil
}

func (s *ShadowFile) lookup(name string) (hash string, ok bool, err error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ":", 2)
		if len(fields) != 2 {
			return "", false, fmt.Errorf("auth: malformed shadow line %q", line)
		}
		if fields[0] == name {
			return fields[1], true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}
