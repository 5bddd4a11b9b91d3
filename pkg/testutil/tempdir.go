package testutil

import (
	"os"
	"path/filepath"

	"src.kl.sh/pkg/must"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. Symlinks in the path are resolved.
func TempDir(c Cleanuper) string {
	dir := must.OK1(os.MkdirTemp("", "kltest"))
	dir = must.OK1(filepath.EvalSymlinks(dir))
	c.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// Files maps file names to their contents, for use with WriteFiles.
type Files map[string]string

// WriteFiles writes the given files under dir, creating parent directories as
// needed.
func WriteFiles(dir string, files Files) {
	for name, content := range files {
		must.WriteFile(filepath.Join(dir, name), content)
	}
}

// InTempDir is like TempDir, but also changes into the directory, and changes
// back to the original directory when the test finishes. It returns the
// temporary directory.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into a directory, and restores the original working directory
// when a test finishes. It returns the directory for easier chaining.
func Chdir(c Cleanuper, dir string) string {
	oldWd := must.OK1(os.Getwd())
	must.OK(os.Chdir(dir))
	c.Cleanup(func() { must.OK(os.Chdir(oldWd)) })
	return dir
}
