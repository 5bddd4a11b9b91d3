package host

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"src.kl.sh/pkg/env"
	"src.kl.sh/pkg/testutil"
)

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings(strings.NewReader(testutil.Dedent(`
		async: true
		implementation: gc
		release: "1.18"
		os: plan9
		port: "0.1"
		porters: someone
		home-directory: /srv/kl/
		history-db: /tmp/history.db
		`)))
	require.NoError(t, err)
	assert.Equal(t, &Settings{
		Async:          true,
		Implementation: "gc",
		Release:        "1.18",
		OS:             "plan9",
		Port:           "0.1",
		Porters:        "someone",
		HomeDirectory:  "/srv/kl/",
		HistoryDB:      "/tmp/history.db",
	}, s)
}

func TestParseSettings_Empty(t *testing.T) {
	s, err := ParseSettings(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, &Settings{}, s)
}

func TestParseSettings_Errors(t *testing.T) {
	for _, code := range []string{"asynchronous: true", "async: [1]", "- a"} {
		_, err := ParseSettings(strings.NewReader(code))
		assert.Error(t, err, code)
	}
}

func TestLoadSettings_ResolvesRelativePaths(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.WriteFiles(dir, testutil.Files{
		"config.yaml": "home-directory: files\nhistory-db: history.db\n",
	})
	s, err := LoadSettings(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "files")+string(filepath.Separator), s.HomeDirectory)
	assert.Equal(t, filepath.Join(dir, "history.db"), s.HistoryDB)
}

func TestLoadSettings_Errors(t *testing.T) {
	dir := testutil.TempDir(t)
	_, err := LoadSettings(filepath.Join(dir, "nope.yaml"))
	assert.True(t, os.IsNotExist(err))

	testutil.WriteFiles(dir, testutil.Files{"bad.yaml": "async: maybe\n"})
	_, err = LoadSettings(filepath.Join(dir, "bad.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestDefaultSettingsPath(t *testing.T) {
	testutil.Setenv(t, env.KL_CONFIG, "/etc/kl.yaml")
	path, err := DefaultSettingsPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/kl.yaml", path)

	testutil.Unsetenv(t, env.KL_CONFIG)
	testutil.Setenv(t, env.XDG_CONFIG_HOME, "/xdg")
	path, err = DefaultSettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "kl", "config.yaml"), path)

	testutil.Unsetenv(t, env.XDG_CONFIG_HOME)
	testutil.Setenv(t, env.HOME, "/home/kl")
	path, err = DefaultSettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/kl", ".config", "kl", "config.yaml"), path)
}

func TestDefaultHistoryDB(t *testing.T) {
	testutil.Setenv(t, env.KL_HISTORY_DB, "/tmp/h.db")
	path, err := DefaultHistoryDB()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", path)

	testutil.Unsetenv(t, env.KL_HISTORY_DB)
	testutil.Setenv(t, env.XDG_STATE_HOME, "/state")
	path, err = DefaultHistoryDB()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/state", "kl", "history.db"), path)
}

func TestSettingsConfig(t *testing.T) {
	streams := StdStreams([3]*os.File{os.Stdin, os.Stdout, os.Stderr})
	cfg := (&Settings{Async: true, Port: "9", HomeDirectory: "/srv"}).Config(streams)

	assert.True(t, cfg.Async)
	assert.Equal(t, "9", cfg.Port)
	assert.Equal(t, "/srv/", cfg.HomeDirectory)
	assert.Equal(t, OSName(), cfg.OS)
	assert.NotEmpty(t, cfg.Implementation)
	assert.NotEmpty(t, cfg.Release)
	assert.NotNil(t, cfg.Clock)
	assert.NotNil(t, cfg.OpenRead)
	assert.NotNil(t, cfg.OpenWrite)
	assert.Equal(t, "stdout", cfg.Stdout.Name())

	dir := testutil.InTempDir(t)
	cfg = (&Settings{}).Config(streams)
	assert.Equal(t, dir+string(filepath.Separator), cfg.HomeDirectory)
	assert.Equal(t, Version, cfg.Port)
}
