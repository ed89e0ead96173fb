package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePasswords(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passwords")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write passwords: %v", err)
	}
	return path
}

func TestAuthorize_KnownUser(t *testing.T) {
	path := writePasswords(t, Entry("alice", "hunter2")+"\n")
	c := New(path, false)

	ok, err := c.Authorize("alice", "hunter2")
	if err != nil || !ok {
		t.Fatalf("Authorize()=%v, %v, want true", ok, err)
	}
	ok, err = c.Authorize("alice", "wrong")
	if err != nil || ok {
		t.Fatalf("Authorize() with bad password=%v, %v, want false", ok, err)
	}
}

func TestAuthorize_UnknownUser(t *testing.T) {
	path := writePasswords(t, Entry("alice", "hunter2")+"\n")
	c := New(path, false)

	ok, err := c.Authorize("bob", "hunter2")
	if err != nil || ok {
		t.Fatalf("Authorize()=%v, %v, want false", ok, err)
	}
}

func TestAuthorize_AnonymousEnabled(t *testing.T) {
	// The passwords file does not exist: anonymous must not consult it.
	c := New(filepath.Join(t.TempDir(), "missing"), true)

	ok, err := c.Authorize(AnonymousUser, "anything")
	if err != nil || !ok {
		t.Fatalf("Authorize(anonymous)=%v, %v, want true", ok, err)
	}
}

func TestAuthorize_AnonymousDisabled(t *testing.T) {
	path := writePasswords(t, Entry("alice", "hunter2")+"\n")
	c := New(path, false)

	ok, err := c.Authorize(AnonymousUser, AnonymousUser)
	if err != nil || ok {
		t.Fatalf("Authorize(anonymous)=%v, %v, want false", ok, err)
	}
}

func TestAuthorize_MalformedLine(t *testing.T) {
	path := writePasswords(t, "alice\n")
	c := New(path, false)

	if _, err := c.Authorize("alice", "hunter2"); err == nil {
		t.Fatal("Authorize() ignored a malformed passwords line")
	}
	// The failure sticks: no per-request retry.
	if _, err := c.Authorize("alice", "hunter2"); err == nil {
		t.Fatal("Authorize() retried a failed load")
	}
}

func TestAuthorize_SkipsBlankLines(t *testing.T) {
	path := writePasswords(t, "\n"+Entry("alice", "hunter2")+"\n\n")
	c := New(path, false)

	ok, err := c.Authorize("alice", "hunter2")
	if err != nil || !ok {
		t.Fatalf("Authorize()=%v, %v, want true", ok, err)
	}
}

func TestEntry_Format(t *testing.T) {
	entry := Entry("alice", "hunter2")
	name, hash, ok := strings.Cut(entry, ":")
	if !ok || name != "alice" {
		t.Fatalf("Entry()=%q", entry)
	}
	if len(hash) != 64 || strings.ToLower(hash) != hash {
		t.Fatalf("Entry() hash=%q, want lowercase sha256 hex", hash)
	}
}
