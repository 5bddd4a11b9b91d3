package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/host"
	"src.kl.sh/pkg/parse"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	JSON        bool

	streams host.Streams
}

// Executes a script, or code from -c. The value of code from -c is written
// to stdout. Extra arguments are available to the program as the list
// *argv*.
func script(ev *eval.Evaler, fds [3]*os.File, args []string, cfg *scriptCfg) int {
	arg0 := args[0]
	ev.SetValue("*argv*", argv(args[1:]))

	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	src := parse.Source{Name: name, Code: code, IsFile: !cfg.Cmd}
	if cfg.CompileOnly {
		err := ev.Check(src)
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorToJSON(err))
		} else if err != nil {
			diag.ShowError(fds[2], err)
		}
		if err != nil {
			return 2
		}
		return 0
	}

	v, err := evalCode(ev, cfg.streams, src)
	if err != nil {
		showError(fds[2], err)
		return 2
	}
	if cfg.Cmd {
		fmt.Fprintln(fds[1], vals.Repr(v))
	}
	return 0
}

func argv(args []string) vals.Value {
	elems := make([]vals.Value, len(args))
	for i, arg := range args {
		elems[i] = vals.Str(arg)
	}
	return vals.ListFromSlice(elems, vals.Nil)
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts a parse or compilation error into JSON. A nil error is converted to
// an empty array.
func errorToJSON(err error) []byte {
	converted := []errorInJSON{}
	var e *diag.Error
	if errors.As(err, &e) {
		converted = append(converted,
			errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
	} else if err != nil {
		converted = append(converted, errorInJSON{Message: err.Error()})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
