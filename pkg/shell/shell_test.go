package shell

import (
	"path/filepath"
	"testing"

	"src.kl.sh/pkg/env"
	"src.kl.sh/pkg/must"
	. "src.kl.sh/pkg/prog/progtest"
	"src.kl.sh/pkg/testutil"
)

// Makes sure that tests don't use the settings or the history of the user.
func setupCleanHomePaths(t *testing.T) string {
	dir := testutil.InTempDir(t)
	testutil.Setenv(t, env.HOME, dir)
	testutil.Setenv(t, env.KL_CONFIG, filepath.Join(dir, "no-config.yaml"))
	testutil.Setenv(t, env.KL_HISTORY_DB, filepath.Join(dir, "history.db"))
	return dir
}

func TestScript(t *testing.T) {
	setupCleanHomePaths(t)
	must.WriteFile("hello.kl", "(write-byte 104 (value *stoutput*))\n(write-byte 105 (value *stoutput*))\n")
	must.WriteFile("args.kl", "(write-byte (string->n (hd (tl (value *argv*)))) (value *stoutput*))")
	must.WriteFile("fails.kl", "(write-byte 97 (value *stoutput*)) (/ 1 0) (write-byte 98 (value *stoutput*))")
	must.WriteFile("invalid-utf8.kl", "\xff")

	Test(t, &Program{},
		ThatKl("hello.kl").WritesStdout("hi"),
		ThatKl("args.kl", "x", "y").WritesStdout("y"),
		ThatKl("-c", "(+ 1 2)").WritesStdout("3\n"),
		ThatKl("-c", "(+ 1 2) (cn \"a\" \"b\")").WritesStdout("\"ab\"\n"),
		ThatKl("-c", "(value *argv*)", "a", "b").WritesStdout("[\"a\" \"b\"]\n"),
		ThatKl("-c", "").WritesStdout("[]\n"),

		ThatKl("invalid-utf8.kl").
			ExitsWith(2).
			WritesStderrContaining("cannot read script"),
		ThatKl("non-existent.kl").
			ExitsWith(2).
			WritesStderrContaining("cannot read script"),

		// parse error
		ThatKl("-c", "(+ 1").
			ExitsWith(2).
			WritesStderrContaining("Parse error"),
		// parse error with -compileonly
		ThatKl("-compileonly", "-c", "(+ 1").
			ExitsWith(2).
			WritesStderrContaining("Parse error"),
		// parse error with -compileonly -json
		ThatKl("-compileonly", "-json", "-c", "(+ 1").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":0,"end":4,"message":"form not terminated, should be ')'"}]`+"\n"),
		ThatKl("-compileonly", "-json", "-c", "1)").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":1,"end":2,"message":"unexpected ')'"}]`+"\n"),

		// compilation error
		ThatKl("-c", "(if)").
			ExitsWith(2).
			WritesStderrContaining("Compilation error"),
		// compilation error with -compileonly
		ThatKl("-compileonly", "-c", "(if)").
			ExitsWith(2).
			WritesStderrContaining("Compilation error"),
		// compilation error with -compileonly -json
		ThatKl("-compileonly", "-json", "-c", "1 (if)").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":2,"end":6,"message":"if requires 3 arguments, got 0"}]`+"\n"),

		// runtime error
		ThatKl("fails.kl").
			ExitsWith(2).
			WritesStdout("a").
			WritesStderrContaining("arithmetic error: division by zero"),
		ThatKl("-c", `(simple-error "failure")`).
			ExitsWith(2).
			WritesStdout("").
			WritesStderrContaining("user error: failure"),
		// runtime error with -compileonly
		ThatKl("-compileonly", "-c", "(/ 1 0)").ExitsWith(0),
		ThatKl("-compileonly", "-json", "-c", "(/ 1 0)").WritesStdout("[]\n"),
	)
}

func TestScript_AsyncSessions(t *testing.T) {
	setupCleanHomePaths(t)
	must.WriteFile("async.yaml", "async: true\n")
	must.WriteFile("sync.yaml", "async: false\nport: \"42\"\n")
	must.WriteFile("bad.yaml", "async: maybe\n")
	must.WriteFile("data.txt", "d")
	must.WriteFile("home.yaml", "home-directory: .\n")

	Test(t, &Program{},
		ThatKl("-c", "(value *async*)").WritesStdout("false\n"),
		ThatKl("-async", "-c", "(value *async*)").WritesStdout("true\n"),
		ThatKl("-config", "async.yaml", "-c", "(value *async*)").WritesStdout("true\n"),
		ThatKl("-config", "async.yaml", "-async=false", "-c", "(value *async*)").
			WritesStdout("false\n"),
		ThatKl("-config", "sync.yaml", "-c", "(value *port*)").WritesStdout("\"42\"\n"),
		ThatKl("-async", "-c", "(defun f (N) (if (= N 0) done (f (- N 1)))) (f 10000)").
			WritesStdout("done\n"),
		ThatKl("-config", "home.yaml", "-c", `(read-byte (open "data.txt" in))`).
			WritesStdout("100\n"),
		ThatKl("-async", "-config", "home.yaml", "-c", `(read-byte (open "data.txt" in))`).
			WritesStdout("100\n"),

		ThatKl("-config", "bad.yaml", "-c", "1").
			ExitsWith(2).
			WritesStderrContaining("cannot load settings"),
		ThatKl("-config", "nope.yaml", "-c", "1").
			ExitsWith(2).
			WritesStderrContaining("cannot load settings"),
	)
}

func TestScript_DefaultSettingsFile(t *testing.T) {
	dir := setupCleanHomePaths(t)
	testutil.Setenv(t, env.KL_CONFIG, filepath.Join(dir, "config.yaml"))
	must.WriteFile("config.yaml", "porters: someone\n")

	Test(t, &Program{},
		ThatKl("-c", "(value *porters*)").WritesStdout("\"someone\"\n"),
	)
}

func TestBadUsage(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, &Program{},
		ThatKl("-c").
			ExitsWith(2).
			WritesStderrContaining("-c requires an argument\nUsage:"),
		ThatKl("-compileonly").
			ExitsWith(2).
			WritesStderrContaining("-compileonly requires a script\nUsage:"),
	)
}

func TestErrorToJSON(t *testing.T) {
	if got := string(errorToJSON(nil)); got != "[]" {
		t.Errorf("errorToJSON(nil) -> %s, want []", got)
	}
}
