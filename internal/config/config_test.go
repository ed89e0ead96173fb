package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.json"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Open()=%v, want *ConfigError", err)
	}
}

func TestOpen_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"server": `)
	_, err := Open(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Open()=%v, want *ConfigError", err)
	}
}

func TestOpen_PathFromEnv(t *testing.T) {
	path := writeConfig(t, `{"server":{"timezone":"UTC"}}`)
	t.Setenv("FEVER_CONFIG_JSON", path)

	s, err := Open("")
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	got, err := s.GetString("server", "timezone")
	if err != nil || got != "UTC" {
		t.Fatalf("GetString()=%q, %v, want %q", got, err, "UTC")
	}
}

func TestGet_MissingKey(t *testing.T) {
	path := writeConfig(t, `{"server":{"timezone":"UTC"}}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	if _, err := s.Get("server", "artifactsDir"); err == nil {
		t.Fatal("Get() on absent key succeeded")
	}
}

func TestGet_Section(t *testing.T) {
	path := writeConfig(t, `{"printer":{"file":"/dev/usb/lp0","dividerChar":"-"}}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	v, err := s.Get("printer")
	if err != nil {
		t.Fatalf("Get()=%v", err)
	}
	section, ok := v.(map[string]any)
	if !ok || section["file"] != "/dev/usb/lp0" {
		t.Fatalf("Get(printer)=%#v, want section with file", v)
	}
}

func TestOverlay_EnvWinsOverFile(t *testing.T) {
	path := writeConfig(t, `{"printer":{"file":"/dev/usb/lp0","imageWidth":"384"}}`)
	t.Setenv("FEVER_PRINTER_FILE", "/tmp/printer.out")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	got, err := s.GetString("printer", "file")
	if err != nil || got != "/tmp/printer.out" {
		t.Fatalf("GetString(printer.file)=%q, %v, want env value", got, err)
	}
	width, err := s.GetString("printer", "imageWidth")
	if err != nil || width != "384" {
		t.Fatalf("GetString(printer.imageWidth)=%q, %v, want file value", width, err)
	}
}

func TestOverlay_UnknownPathIgnored(t *testing.T) {
	path := writeConfig(t, `{"server":{"timezone":"UTC"}}`)
	t.Setenv("FEVER_SERVER_ARTIFACTSDIR", "/tmp/artifacts")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	if _, err := s.Get("server", "artifactsDir"); err == nil {
		t.Fatal("overlay created a key absent from the file")
	}
}

func TestOverlay_ReappliedOnReload(t *testing.T) {
	path := writeConfig(t, `{"server":{"timezone":"UTC"}}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}

	t.Setenv("FEVER_SERVER_TIMEZONE", "Asia/Tokyo")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload()=%v", err)
	}
	got, err := s.GetString("server", "timezone")
	if err != nil || got != "Asia/Tokyo" {
		t.Fatalf("GetString()=%q, %v, want overlay value after reload", got, err)
	}
}

func TestReload_WithoutLoad(t *testing.T) {
	s := &Store{}
	var cfgErr *ConfigError
	if err := s.Reload(); !errors.As(err, &cfgErr) {
		t.Fatalf("Reload()=%v, want *ConfigError", err)
	}
}

func TestSave_WithoutLoad(t *testing.T) {
	s := &Store{}
	var cfgErr *ConfigError
	if err := s.Save(); !errors.As(err, &cfgErr) {
		t.Fatalf("Save()=%v, want *ConfigError", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := writeConfig(t, `{"server":{"timezone":"UTC","artifactsDir":"./artifacts"},"printer":{"dividerChar":"="}}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open()=%v", err)
	}
	if err := s.Set("true", "server", "anonymousLoginEnabled"); err != nil {
		t.Fatalf("Set()=%v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save()=%v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload()=%v", err)
	}

	for _, tc := range []struct {
		keys []string
		want string
	}{
		{[]string{"server", "timezone"}, "UTC"},
		{[]string{"server", "artifactsDir"}, "./artifacts"},
		{[]string{"server", "anonymousLoginEnabled"}, "true"},
		{[]string{"printer", "dividerChar"}, "="},
	} {
		got, err := s.GetString(tc.keys...)
		if err != nil || got != tc.want {
			t.Fatalf("GetString(%v)=%q, %v, want %q", tc.keys, got, err, tc.want)
		}
	}
}

func TestEnvName(t *testing.T) {
	got := envName([]string{"server", "passwordsFile"})
	if got != "FEVER_SERVER_PASSWORDSFILE" {
		t.Fatalf("envName()=%q, want %q", got, "FEVER_SERVER_PASSWORDSFILE")
	}
}
