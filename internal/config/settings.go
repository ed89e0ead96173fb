package config

import (
	"fmt"
	"strconv"
	"time"
)

// Settings is the typed view of the document the print pipeline reads.
// Extraction validates every key once, so a process that starts is known to
// carry a complete configuration.
type Settings struct {
	Timezone              *time.Location
	TimezoneName          string
	DatabaseURI           string
	ArtifactsDir          string
	PasswordsFile         string
	AnonymousLoginEnabled bool
	PrintConfigOnStartup  bool

	PrinterFile  string
	NumLinefeeds int
	PrintHeader  bool
	PrintDivider bool
	DividerChar  string
	TextColumns  int
	ImageWidth   int
}

// ExtractSettings resolves and validates all keys the pipeline depends on.
// It is cheap enough to call per request, which is how a Reload becomes
// visible to jobs started afterward.
func ExtractSettings(s *Store) (Settings, error) {
	var set Settings
	var err error

	if set.TimezoneName, err = s.GetString("server", "timezone"); err != nil {
		return Settings{}, err
	}
	if set.Timezone, err = time.LoadLocation(set.TimezoneName); err != nil {
		return Settings{}, &ConfigError{Op: "settings", Err: fmt.Errorf("server.timezone: %w", err)}
	}
	if set.DatabaseURI, err = s.GetString("server", "databaseUri"); err != nil {
		return Settings{}, err
	}
	if set.ArtifactsDir, err = s.GetString("server", "artifactsDir"); err != nil {
		return Settings{}, err
	}
	if set.PasswordsFile, err = s.GetString("server", "passwordsFile"); err != nil {
		return Settings{}, err
	}
	if set.AnonymousLoginEnabled, err = boolSetting(s, "server", "anonymousLoginEnabled"); err != nil {
		return Settings{}, err
	}
	if set.PrintConfigOnStartup, err = boolSetting(s, "server", "printConfigOnStartup"); err != nil {
		return Settings{}, err
	}

	if set.PrinterFile, err = s.GetString("printer", "file"); err != nil {
		return Settings{}, err
	}
	if set.NumLinefeeds, err = intSetting(s, "printer", "numLinefeeds"); err != nil {
		return Settings{}, err
	}
	if set.PrintHeader, err = boolSetting(s, "printer", "printHeader"); err != nil {
		return Settings{}, err
	}
	if set.PrintDivider, err = boolSetting(s, "printer", "printDivider"); err != nil {
		return Settings{}, err
	}
	if set.DividerChar, err = s.GetString("printer", "dividerChar"); err != nil {
		return Settings{}, err
	}
	if set.TextColumns, err = intSetting(s, "printer", "textColumns"); err != nil {
		return Settings{}, err
	}
	if set.ImageWidth, err = intSetting(s, "printer", "imageWidth"); err != nil {
		return Settings{}, err
	}
	if set.ImageWidth <= 0 {
		return Settings{}, &ConfigError{Op: "settings", Err: fmt.Errorf("printer.imageWidth must be positive")}
	}
	return set, nil
}

// Every leaf is a string; booleans are spelled "true"/"false" in the document.
func boolSetting(s *Store, keys ...string) (bool, error) {
	v, err := s.GetString(keys...)
	if err != nil {
		return false, err
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ConfigError{Op: "settings", Err: fmt.Errorf("%s: want \"true\" or \"false\", got %q", dotted(keys), v)}
}

func intSetting(s *Store, keys ...string) (int, error) {
	v, err := s.GetString(keys...)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigError{Op: "settings", Err: fmt.Errorf("%s: not an integer: %q", dotted(keys), v)}
	}
	return n, nil
}

func dotted(keys []string) string {
	out := ""
	for i, key := range keys {
		if i > 0 {
			out += "."
		}
		out += key
	}
	return out
}
