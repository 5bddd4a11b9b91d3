package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"src.kl.sh/pkg/env"
	"src.kl.sh/pkg/testutil"
)

func TestGetHome(t *testing.T) {
	testutil.Setenv(t, env.HOME, "/home/kl/")
	home, err := GetHome("")
	if home != "/home/kl" || err != nil {
		t.Errorf("GetHome() -> %q, %v, want /home/kl, nil", home, err)
	}
	if _, err := GetHome("someone"); err == nil {
		t.Errorf("GetHome(someone) -> nil error, want error")
	}
}

func TestTildeAbbr(t *testing.T) {
	testutil.Setenv(t, env.HOME, "/home/kl")
	for path, want := range map[string]string{
		"/home/kl":        "~",
		"/home/kl/src":    "~/src",
		"/home/klaus/src": "/home/klaus/src",
		"/tmp":            "/tmp",
	} {
		if got := TildeAbbr(path); got != want {
			t.Errorf("TildeAbbr(%q) -> %q, want %q", path, got, want)
		}
	}
}

func TestGetwd(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.Setenv(t, env.HOME, dir)
	testutil.Chdir(t, dir)
	if got := Getwd(); got != "~" {
		t.Errorf("Getwd() -> %q, want ~", got)
	}

	sub := filepath.Join(dir, "sub")
	os.Mkdir(sub, 0700)
	testutil.Chdir(t, sub)
	if got := Getwd(); got != filepath.Join("~", "sub") {
		t.Errorf("Getwd() -> %q, want ~/sub", got)
	}
}
