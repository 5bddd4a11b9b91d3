package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/evaltest"
	. "src.kl.sh/pkg/prog/progtest"
	"src.kl.sh/pkg/store"
)

func TestInteract(t *testing.T) {
	setupCleanHomePaths(t)

	Test(t, &Program{},
		ThatKl().WithStdin("(+ 1 2)\n").
			WritesStdout("3\n").
			WritesStderrContaining("~> "),
		ThatKl().WithStdin("(defun f (X) (* X 2))\n(f 21)\n").
			WritesStdout("f\n42\n").
			WritesStderrContaining("~> "),
		// Forms continue on the following lines.
		ThatKl().WithStdin("(cons 1\n  (cons 2\n    ()))\n").
			WritesStdout("[1 2]\n").
			WritesStderrContaining("~> "),
		ThatKl().WithStdin("(/ 1 0)\n(+ 1 2)\n").
			WritesStdout("3\n").
			WritesStderrContaining("arithmetic error: division by zero"),
		ThatKl().WithStdin("(if)\n").
			WritesStderrContaining("Compilation error"),
		ThatKl().WithStdin("1)\n").
			WritesStderrContaining("Parse error"),
		// Incomplete code at the end of input is reported.
		ThatKl().WithStdin("(+ 1").
			WritesStderrContaining("form not terminated"),
		ThatKl().WithStdin("\n\n").DoesNothing().WritesStderrContaining("~> "),
		ThatKl("-async").WithStdin("(value *async*)\n").WritesStdout("true\n").
			WritesStderrContaining("~> "),
		ThatKl().WithStdin(`(write-byte 104 (value *stoutput*))` + "\n").
			WritesStdout("h104\n").
			WritesStderrContaining("~> "),
	)
}

func TestInteract_RecordsHistory(t *testing.T) {
	dir := setupCleanHomePaths(t)
	db := filepath.Join(dir, "h.db")

	exit, _, stderr := Run(&Program{}, []string{"kl", "-db", db}, "(+ 1 2)\n\n(cons 1\n 2)\n")
	if exit != 0 {
		t.Fatalf("exit code %d, stderr %q", exit, stderr)
	}

	st, err := store.NewStore(db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	cmds, err := st.CmdsWithSeq(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 2 || cmds[0].Text != "(+ 1 2)" || cmds[1].Text != "(cons 1\n 2)" {
		t.Errorf("got history %v", cmds)
	}
	if got := loadHistory(st); len(got) != 2 || got[1] != "(cons 1\n 2)" {
		t.Errorf("loadHistory -> %q", got)
	}
}

func TestInteract_HistoryInSettings(t *testing.T) {
	dir := setupCleanHomePaths(t)
	os.WriteFile("config.yaml", []byte("history-db: state/h.db\n"), 0600)

	exit, _, _ := Run(&Program{}, []string{"kl", "-config", "config.yaml"}, "(+ 1 2)\n")
	if exit != 0 {
		t.Fatalf("exit code %d", exit)
	}
	if _, err := os.Stat(filepath.Join(dir, "state", "h.db")); err != nil {
		t.Errorf("history not created: %v", err)
	}
}

func TestInteract_BadHistoryPath(t *testing.T) {
	dir := setupCleanHomePaths(t)
	os.WriteFile(filepath.Join(dir, "file"), nil, 0600)

	exit, stdout, stderr := Run(&Program{},
		[]string{"kl", "-db", filepath.Join(dir, "file", "h.db")}, "(+ 1 2)\n")
	if exit != 0 || stdout != "3\n" {
		t.Errorf("got exit %d, stdout %q", exit, stdout)
	}
	if !strings.Contains(stderr, "Warning: cannot open history") {
		t.Errorf("got stderr %q, want warning", stderr)
	}
}

func TestCompleteFunctionName(t *testing.T) {
	ev := eval.NewEvaler(eval.Config{Stdout: evaltest.NewOutBuffer("stdout")})
	for _, test := range []struct {
		line           string
		pos            int
		head           string
		wantCandidates []string
		tail           string
	}{
		{"(str", 4, "(", []string{"str", "string->n", "string?"}, ""},
		{"(cons (tl", 9, "(cons (", []string{"tl", "tlstr"}, ""},
		{"(hd x)", 3, "(", []string{"hd"}, " x)"},
		{"(hd tl", 6, "(hd tl", nil, ""},
		{"tl", 2, "tl", nil, ""},
	} {
		head, candidates, tail := completeFunctionName(ev, test.line, test.pos)
		if head != test.head || tail != test.tail || !equalStrings(candidates, test.wantCandidates) {
			t.Errorf("completeFunctionName(%q, %d) -> %q, %q, %q",
				test.line, test.pos, head, candidates, tail)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
