package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"src.kl.sh/pkg/eval"
)

// This type is the interface that the line editor has to satisfy.
type editor interface {
	// ReadLine shows the prompt and reads a line, without the line ending. It
	// returns io.EOF when input has ended.
	ReadLine(prompt string) (string, error)
	// AddHistory records code that has been entered.
	AddHistory(code string)
	Close() error
}

// Uses liner when stdin and stdout are the terminal of the process; liner
// always works on the standard files of the process.
func newEditor(ev *eval.Evaler, fds [3]*os.File, history []string) editor {
	if fds[0] == os.Stdin && fds[1] == os.Stdout &&
		isatty.IsTerminal(fds[0].Fd()) && isatty.IsTerminal(fds[1].Fd()) {
		return newLinerEditor(ev, history)
	}
	return newMinEditor(fds[0], fds[2])
}

type linerEditor struct {
	*liner.State
}

func newLinerEditor(ev *eval.Evaler, history []string) *linerEditor {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)
	ln.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		return completeFunctionName(ev, line, pos)
	})
	for _, code := range history {
		ln.AppendHistory(code)
	}
	return &linerEditor{ln}
}

func (ed *linerEditor) ReadLine(prompt string) (string, error) {
	line, err := ed.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", errAborted
	}
	return line, err
}

func (ed *linerEditor) AddHistory(code string) {
	ed.AppendHistory(strings.ReplaceAll(code, "\n", " "))
}

// Completes the function name around pos, when it follows an opening
// parenthesis.
func completeFunctionName(ev *eval.Evaler, line string, pos int) (string, []string, string) {
	start := pos
	for start > 0 && !strings.ContainsRune("() \t\"", rune(line[start-1])) {
		start--
	}
	if start == 0 || line[start-1] != '(' {
		return line[:pos], nil, line[pos:]
	}
	prefix := line[start:pos]
	var candidates []string
	for _, name := range ev.FunctionNames() {
		if strings.HasPrefix(name, prefix) {
			candidates = append(candidates, name)
		}
	}
	return line[:start], candidates, line[pos:]
}

type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in, out *os.File) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

func (ed *minEditor) ReadLine(prompt string) (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (*minEditor) AddHistory(string) {}

func (*minEditor) Close() error { return nil }
