package device

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"
	"sync"
)

// ErrDevice wraps every render capability failure. A failed call leaves no
// partial job state behind it; the orchestrator aborts the request.
var ErrDevice = errors.New("printer device failure")

// Device is the render capability: each call either fully succeeds or fails.
type Device interface {
	Text(text string) error
	Image(img image.Image, center bool) error
	Newline(count int) error
}

// Backend opens devices for the URI schemes it claims.
type Backend interface {
	Schemes() []string
	Open(target string) (Device, error)
}

var registry struct {
	sync.RWMutex
	backends []Backend
}

func Register(b Backend) {
	if b == nil {
		return
	}
	registry.Lock()
	registry.backends = append(registry.backends, b)
	registry.Unlock()
}

// Open resolves target against the registered backends. A target without a
// scheme is treated as a character-device path (the "file" scheme).
func Open(target string) (Device, error) {
	scheme := "file"
	rest := target
	if u, err := url.Parse(target); err == nil && u.Scheme != "" {
		scheme = strings.ToLower(u.Scheme)
		rest = u.Path
	}
	registry.RLock()
	defer registry.RUnlock()
	for _, b := range registry.backends {
		for _, s := range b.Schemes() {
			if strings.EqualFold(s, scheme) {
				return b.Open(rest)
			}
		}
	}
	return nil, fmt.Errorf("%w: no backend for scheme %q", ErrDevice, scheme)
}
