package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"src.kl.sh/pkg/must"
)

type cleanuper struct{ fns []func() }

func (c *cleanuper) Cleanup(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanuper) runCleanups() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func TestTempDir_DirHasSymlinksResolved(t *testing.T) {
	dir := TempDir(t)
	resolved := must.OK1(filepath.EvalSymlinks(dir))
	if dir != resolved {
		t.Errorf("TempDir returns %q, but it resolves to %q", dir, resolved)
	}
}

func TestTempDir_CleanupRemovesDirRecursively(t *testing.T) {
	c := &cleanuper{}
	dir := TempDir(c)
	WriteFiles(dir, Files{"a/b": "test"})

	c.runCleanups()
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("Dir %q still exists after cleanup", dir)
	}
}

func TestInTempDir(t *testing.T) {
	original := must.OK1(os.Getwd())

	c := &cleanuper{}
	dir := InTempDir(c)
	if wd := must.OK1(os.Getwd()); wd != dir {
		t.Errorf("pwd is now %q, want %q", wd, dir)
	}

	c.runCleanups()
	if wd := must.OK1(os.Getwd()); wd != original {
		t.Errorf("pwd restored to %q, want %q", wd, original)
	}
}

func TestSetenv(t *testing.T) {
	const name = "KL_TEST_SETENV"
	os.Setenv(name, "old")
	defer os.Unsetenv(name)

	c := &cleanuper{}
	Setenv(c, name, "new")
	if v := os.Getenv(name); v != "new" {
		t.Errorf("got %q, want new", v)
	}
	c.runCleanups()
	if v := os.Getenv(name); v != "old" {
		t.Errorf("got %q after cleanup, want old", v)
	}

	Unsetenv(c, name)
	if _, ok := os.LookupEnv(name); ok {
		t.Errorf("variable still set after Unsetenv")
	}
}
