package evaltest

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/parse"
	"src.kl.sh/pkg/transcript"
)

// TestTranscriptsInFS extracts all transcript sessions from .klts files in
// fsys, and runs each of them as a test, once in a synchronous session and
// once in an asynchronous one. See [src.kl.sh/pkg/transcript] for the format
// of transcripts.
//
// Typical use of this function looks like this:
//
//	//go:embed *.klts
//	var transcripts embed.FS
//
//	func TestTranscripts(t *testing.T) {
//		evaltest.TestTranscriptsInFS(t, transcripts)
//	}
//
// The function accepts variadic arguments in (name, f) pairs, where name must
// not contain any spaces and f is a func(*eval.Evaler). Each pair defines a
// setup function that may be referred to in the transcripts with the
// directive "//name".
//
// The following setup functions are predefined:
//
//   - eval $code: Evaluate the argument as KLambda code.
//
//   - sync-only and async-only: Only run the session in one mode.
//
//   - stdin $text: Make the standard input read $text, with "\n" standing
//     for newlines.
func TestTranscriptsInFS(t *testing.T, fsys fs.FS, setupPairs ...any) {
	nodes, err := transcript.ParseFromFS(fsys)
	if err != nil {
		t.Fatalf("parse transcript sessions: %v", err)
	}
	setups := buildSetupMap(setupPairs)
	for _, session := range transcript.Sessions(nodes) {
		session := session
		t.Run(session.Name, func(t *testing.T) {
			for _, mode := range modes {
				mode := mode
				t.Run(mode.name, func(t *testing.T) {
					testSession(t, session, setups, mode.async)
				})
			}
		})
	}
}

type sessionSetup struct {
	skip   bool
	stdin  string
	setups []func(*eval.Evaler)
}

func testSession(t *testing.T, session transcript.Session, setups map[string]func(*eval.Evaler), async bool) {
	var ss sessionSetup
	for _, directive := range session.Directives {
		name, arg, _ := strings.Cut(directive, " ")
		switch name {
		case "sync-only":
			ss.skip = ss.skip || async
		case "async-only":
			ss.skip = ss.skip || !async
		case "stdin":
			ss.stdin = strings.ReplaceAll(arg, `\n`, "\n")
		case "eval":
			ss.setups = append(ss.setups, func(ev *eval.Evaler) {
				if _, err := ev.Eval(parse.Source{Name: "[setup]", Code: arg}); err != nil {
					t.Fatalf("setup failed: %v\n", err)
				}
			})
		default:
			f, ok := setups[name]
			if !ok {
				t.Fatalf("unknown setup function: %s", name)
			}
			ss.setups = append(ss.setups, f)
		}
	}
	if ss.skip {
		t.Skip("not run in this mode")
	}

	stdout := NewOutBuffer("stdout")
	ev := eval.NewEvaler(eval.Config{
		Async:  async,
		Clock:  NewClock(),
		Stdin:  NewInString("stdin", ss.stdin),
		Stdout: stdout,
	})
	for _, f := range ss.setups {
		f(ev)
	}
	for _, interaction := range session.Interactions {
		want := interaction.Output
		got := evalAndCollectOutput(ev, stdout, interaction.Code)
		if want != got {
			t.Errorf("\n%s\n-want +got:\n%s",
				interaction.PromptAndCode(), cmp.Diff(want, got))
		}
	}
}

func buildSetupMap(setupPairs []any) map[string]func(*eval.Evaler) {
	if len(setupPairs)%2 != 0 {
		panic(fmt.Sprintf("variadic arguments must come in pairs, got %d", len(setupPairs)))
	}
	setups := make(map[string]func(*eval.Evaler))
	for i := 0; i < len(setupPairs); i += 2 {
		name := setupPairs[i].(string)
		if setups[name] != nil {
			panic(fmt.Sprintf("there's already a setup function named %s", name))
		}
		switch f := setupPairs[i+1].(type) {
		case func():
			setups[name] = func(*eval.Evaler) { f() }
		case func(*eval.Evaler):
			setups[name] = f
		default:
			panic(fmt.Sprintf("unsupported setup function type: %T", f))
		}
	}
	return setups
}

// evalAndCollectOutput evaluates code, and returns what it writes to the
// standard output, followed by the value of the last form or the error.
func evalAndCollectOutput(ev *eval.Evaler, stdout *OutBuffer, code string) string {
	before := len(stdout.String())
	v, err := evalSource(ev, parse.Source{Name: "[tty]", Code: code})

	var sb strings.Builder
	sb.WriteString(stdout.String()[before:])
	if err != nil {
		// Positions are not shown, since they are only known when the code is
		// evaluated with Eval.
		if e, ok := err.(*diag.Error); ok {
			sb.WriteString(e.Type + ": " + e.Message)
		} else if e, ok := err.(*vals.Error); ok {
			sb.WriteString(e.Class.String() + ": " + e.Message)
		} else {
			sb.WriteString(err.Error())
		}
	} else {
		sb.WriteString(vals.Repr(v))
	}
	sb.WriteByte('\n')
	return sb.String()
}
