package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// EnvPrefix is prepended to every derived override variable name.
const EnvPrefix = "FEVER"

// DefaultPath is used when neither an explicit path nor FEVER_CONFIG_JSON is set.
const DefaultPath = "./config.json"

// ConfigError covers missing or malformed configuration: an unreadable file,
// invalid JSON, an absent key, or an operation invoked before any load.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Store holds the shared configuration document: nested string-keyed sections
// whose leaves are all strings. Load, Reload and Save take the write lock so
// readers never observe a half-applied document.
type Store struct {
	mu   sync.RWMutex
	doc  map[string]any
	path string
}

// Open loads the document from path. An empty path resolves through
// FEVER_CONFIG_JSON, then falls back to DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_JSON")
	}
	if path == "" {
		path = DefaultPath
	}
	s := &Store{}
	if err := s.Load(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the document with the contents of path, applies the
// environment overlay, and makes path the persistence target.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Op: "load", Err: err}
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ConfigError{Op: "load", Err: fmt.Errorf("%s: %w", path, err)}
	}
	applyOverlay(doc, nil, os.LookupEnv)

	s.mu.Lock()
	s.doc = doc
	s.path = path
	s.mu.Unlock()
	return nil
}

// Reload re-reads the document from the path of the last successful Load.
func (s *Store) Reload() error {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()
	if path == "" {
		return &ConfigError{Op: "reload", Err: fmt.Errorf("no configuration file loaded")}
	}
	return s.Load(path)
}

// Save serializes the current document back to the load path.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.path == "" {
		return &ConfigError{Op: "save", Err: fmt.Errorf("no configuration file loaded")}
	}
	data, err := json.Marshal(s.doc)
	if err != nil {
		return &ConfigError{Op: "save", Err: err}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return &ConfigError{Op: "save", Err: err}
	}
	return nil
}

// Get resolves a key path to either a leaf string or a nested section.
func (s *Store) Get(keys ...string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cur any = s.doc
	for i, key := range keys {
		section, ok := cur.(map[string]any)
		if !ok {
			return nil, &ConfigError{Op: "get", Err: fmt.Errorf("%s is not a section", strings.Join(keys[:i], "."))}
		}
		cur, ok = section[key]
		if !ok {
			return nil, &ConfigError{Op: "get", Err: fmt.Errorf("missing key %s", strings.Join(keys[:i+1], "."))}
		}
	}
	return cur, nil
}

// GetString resolves a key path that must end at a string leaf.
func (s *Store) GetString(keys ...string) (string, error) {
	v, err := s.Get(keys...)
	if err != nil {
		return "", err
	}
	leaf, ok := v.(string)
	if !ok {
		return "", &ConfigError{Op: "get", Err: fmt.Errorf("%s is not a string leaf", strings.Join(keys, "."))}
	}
	return leaf, nil
}

// Set writes a leaf value, creating intermediate sections as needed.
func (s *Store) Set(value string, keys ...string) error {
	if len(keys) == 0 {
		return &ConfigError{Op: "set", Err: fmt.Errorf("empty key path")}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		s.doc = map[string]any{}
	}
	cur := s.doc
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
	return nil
}

// Dump renders the document as indented JSON for the startup config dump.
func (s *Store) Dump() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// envName derives the override variable name for a leaf key path:
// the prefix plus every key segment, uppercased and joined by underscores.
func envName(keys []string) string {
	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, EnvPrefix)
	for _, key := range keys {
		parts = append(parts, strings.ToUpper(key))
	}
	return strings.Join(parts, "_")
}

// applyOverlay walks the document depth-first and replaces every string leaf
// whose derived variable is present in the environment. Only leaf paths that
// already exist in the document are overridable; anything else is ignored.
func applyOverlay(doc map[string]any, prefix []string, lookup func(string) (string, bool)) {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		path := append(append([]string{}, prefix...), key)
		switch v := doc[key].(type) {
		case map[string]any:
			applyOverlay(v, path, lookup)
		case string:
			if value, ok := lookup(envName(path)); ok {
				doc[key] = value
			}
		}
	}
}
