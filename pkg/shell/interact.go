package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/fsutil"
	"src.kl.sh/pkg/host"
	"src.kl.sh/pkg/parse"
	"src.kl.sh/pkg/store"
)

// Configuration for the interactive mode.
type interactCfg struct {
	streams host.Streams
	// May be nil.
	history *store.Store
}

var errAborted = errors.New("aborted")

// Runs the REPL until input ends. Code that is not complete, like an
// unterminated form, is continued on the following lines.
func interact(ev *eval.Evaler, fds [3]*os.File, cfg *interactCfg) {
	ed := newEditor(ev, fds, loadHistory(cfg.history))
	defer ed.Close()

	cmdNum := 0
	for {
		code, err := readCode(ed)
		if err == io.EOF {
			break
		} else if err == errAborted {
			continue
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		cmdNum++
		ed.AddHistory(code)
		if cfg.history != nil {
			if _, err := cfg.history.AddCmd(code); err != nil {
				logger.Println("add history:", err)
			}
		}

		src := parse.Source{Name: fmt.Sprintf("[tty %v]", cmdNum), Code: code}
		v, err := evalCode(ev, cfg.streams, src)
		if err != nil {
			showError(fds[2], err)
			continue
		}
		fmt.Fprintln(fds[1], vals.Repr(v))
	}
}

func readCode(ed editor) (string, error) {
	prompt := fsutil.Getwd() + "> "
	var sb strings.Builder
	for {
		line, err := ed.ReadLine(prompt)
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				// Let the evaluation report the incomplete code.
				return sb.String(), nil
			}
			return "", err
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)

		_, err = parse.Parse(parse.Source{Code: sb.String()})
		if !parse.IsIncomplete(err) {
			return sb.String(), nil
		}
		prompt = strings.Repeat(" ", len(prompt))
	}
}

// Number of history entries kept in the database and loaded into the editor.
const maxHistory = 1000

func loadHistory(st *store.Store) []string {
	if st == nil {
		return nil
	}
	cmds, err := st.LastCmds(maxHistory)
	if err != nil {
		logger.Println("load history:", err)
		return nil
	}
	history := make([]string, len(cmds))
	for i, cmd := range cmds {
		history[i] = cmd.Text
	}
	return history
}
