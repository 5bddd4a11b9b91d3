// Package host provides the host environment of KLambda sessions: streams
// backed by files, the clock, metadata about the system, and session settings
// loaded from YAML files.
package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
	"src.kl.sh/pkg/env"
	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/fsutil"
	"src.kl.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[host] ")

// Settings configures a session. The zero value is usable; empty fields take
// default values in Config.
type Settings struct {
	Async          bool   `yaml:"async"`
	Implementation string `yaml:"implementation"`
	Release        string `yaml:"release"`
	OS             string `yaml:"os"`
	Port           string `yaml:"port"`
	Porters        string `yaml:"porters"`
	HomeDirectory  string `yaml:"home-directory"`
	HistoryDB      string `yaml:"history-db"`
}

// ParseSettings parses settings in YAML. Unknown keys are errors.
func ParseSettings(r io.Reader) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &s, nil
}

// LoadSettings reads settings from a YAML file. Relative paths in the settings
// are resolved against the directory of the file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseSettings(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if s.HomeDirectory != "" && !filepath.IsAbs(s.HomeDirectory) {
		s.HomeDirectory = withSeparator(filepath.Join(dir, s.HomeDirectory))
	}
	if s.HistoryDB != "" && !filepath.IsAbs(s.HistoryDB) {
		s.HistoryDB = filepath.Join(dir, s.HistoryDB)
	}
	logger.Printf("loaded settings from %s: %+v", path, *s)
	return s, nil
}

// DefaultSettingsPath returns the path of the settings file used when none is
// given explicitly. It is $KL_CONFIG when set, and otherwise kl/config.yaml in
// the user's configuration directory.
func DefaultSettingsPath() (string, error) {
	if path := os.Getenv(env.KL_CONFIG); path != "" {
		return path, nil
	}
	if dir := os.Getenv(env.XDG_CONFIG_HOME); dir != "" {
		return filepath.Join(dir, "kl", "config.yaml"), nil
	}
	home, err := fsutil.GetHome("")
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kl", "config.yaml"), nil
}

// DefaultHistoryDB returns the path of the history database used when the
// settings don't name one. It is $KL_HISTORY_DB when set, and otherwise
// kl/history.db in the user's state directory.
func DefaultHistoryDB() (string, error) {
	if path := os.Getenv(env.KL_HISTORY_DB); path != "" {
		return path, nil
	}
	if dir := os.Getenv(env.XDG_STATE_HOME); dir != "" {
		return filepath.Join(dir, "kl", "history.db"), nil
	}
	home, err := fsutil.GetHome("")
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "kl", "history.db"), nil
}

// Version is reported as *port* unless the settings override it.
var Version = "unknown"

// Config converts the settings to the configuration of a session using the
// given standard streams. The clock and the file system of the process are
// used.
func (s *Settings) Config(streams Streams) eval.Config {
	home := s.HomeDirectory
	if home == "" {
		if wd, err := os.Getwd(); err == nil {
			home = wd
		}
	}
	return eval.Config{
		Async:          s.Async,
		Implementation: orDefault(s.Implementation, runtime.Compiler),
		Release:        orDefault(s.Release, strings.TrimPrefix(runtime.Version(), "go")),
		OS:             orDefault(s.OS, OSName()),
		Port:           orDefault(s.Port, Version),
		Porters:        orDefault(s.Porters, "kl authors"),
		HomeDirectory:  withSeparator(home),
		Clock:          Clock,
		OpenRead:       OpenRead,
		OpenWrite:      OpenWrite,
		Stdin:          streams.Stdin,
		Stdout:         streams.Stdout,
		Stderr:         streams.Stderr,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Paths passed to open are appended to the home directory, so it must end
// with a separator.
func withSeparator(dir string) string {
	if dir == "" || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}
