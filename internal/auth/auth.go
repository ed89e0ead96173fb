package auth

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

// AnonymousUser is the identity assigned to requests without credentials.
const AnonymousUser = "anonymous"

// Credentials answers authorization decisions against a line-oriented
// passwords file ("username:hexsha256hash" per line). The file is read once,
// on the first decision that needs it; a load failure is remembered and fails
// every later decision rather than being retried per request.
type Credentials struct {
	path      string
	anonymous bool

	mu      sync.Mutex
	users   map[string]string
	loadErr error
}

func New(passwordsFile string, anonymousLoginEnabled bool) *Credentials {
	return &Credentials{path: passwordsFile, anonymous: anonymousLoginEnabled}
}

// Authorize reports whether the supplied credentials identify a known user.
// The anonymous identity succeeds without consulting the passwords file when
// anonymous login is enabled. The error return is reserved for a failed
// credential load, a startup-class fault.
func (c *Credentials) Authorize(username, password string) (bool, error) {
	if username == AnonymousUser && c.anonymous {
		return true, nil
	}

	users, err := c.load()
	if err != nil {
		return false, err
	}
	hash, ok := users[username]
	if !ok {
		return false, nil
	}
	return hashPassword(password) == hash, nil
}

func (c *Credentials) load() (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.users != nil || c.loadErr != nil {
		return c.users, c.loadErr
	}

	f, err := os.Open(c.path)
	if err != nil {
		c.loadErr = fmt.Errorf("load passwords file: %w", err)
		return nil, c.loadErr
	}
	defer f.Close()

	users := map[string]string{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		name, hash, ok := strings.Cut(line, ":")
		if !ok || name == "" || hash == "" {
			c.loadErr = fmt.Errorf("load passwords file: malformed entry at %s:%d", c.path, lineNo)
			return nil, c.loadErr
		}
		users[name] = hash
	}
	if err := scanner.Err(); err != nil {
		c.loadErr = fmt.Errorf("load passwords file: %w", err)
		return nil, c.loadErr
	}
	c.users = users
	return c.users, nil
}

// Entry renders a passwords-file line for the given credentials.
func Entry(username, password string) string {
	return username + ":" + hashPassword(password)
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
