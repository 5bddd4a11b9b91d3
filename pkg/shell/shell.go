// Package shell is the entry point for running KLambda code: scripts, code
// given with -c, and the interactive REPL.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/host"
	"src.kl.sh/pkg/logutil"
	"src.kl.sh/pkg/parse"
	"src.kl.sh/pkg/prog"
	"src.kl.sh/pkg/store"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram.
type Program struct{}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	settings, err := loadSettings(f)
	if err != nil {
		return err
	}
	streams := host.StdStreams(fds)
	ev := eval.NewEvaler(settings.Config(streams))
	defer streams.Close()

	if len(args) > 0 {
		exit := script(ev, fds, args, &scriptCfg{
			Cmd: f.CodeInArg, CompileOnly: f.CompileOnly, JSON: f.JSON,
			streams: streams})
		return prog.Exit(exit)
	}
	if f.CodeInArg {
		return prog.BadUsage("-c requires an argument")
	}
	if f.CompileOnly {
		return prog.BadUsage("-compileonly requires a script")
	}

	cfg := &interactCfg{streams: streams}
	if st, err := openHistory(f, settings); err != nil {
		fmt.Fprintln(fds[2], "Warning: cannot open history:", err)
	} else {
		defer st.Close()
		cfg.history = st
	}
	interact(ev, fds, cfg)
	return nil
}

// Settings come from the -config flag, or the default settings file if it
// exists. The -async flag overrides the settings.
func loadSettings(f *prog.Flags) (*host.Settings, error) {
	path, explicit := f.Config, f.Config != ""
	if !explicit {
		var err error
		path, err = host.DefaultSettingsPath()
		if err != nil {
			logger.Println("no default settings:", err)
			path = ""
		}
	}
	settings := &host.Settings{}
	if path != "" {
		s, err := host.LoadSettings(path)
		if err == nil {
			settings = s
		} else if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot load settings: %w", err)
		}
	}
	if f.AsyncSet {
		settings.Async = f.Async
	}
	return settings, nil
}

func openHistory(f *prog.Flags, settings *host.Settings) (*store.Store, error) {
	path := f.DB
	if path == "" {
		path = settings.HistoryDB
	}
	if path == "" {
		var err error
		path, err = host.DefaultHistoryDB()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	logger.Println("opening history at", path)
	st, err := store.NewStore(path)
	if err != nil {
		return nil, err
	}
	if _, err := st.TrimCmds(maxHistory); err != nil {
		logger.Println("trim history:", err)
	}
	return st, nil
}

// Evaluates code, flushing the standard streams afterwards.
func evalCode(ev *eval.Evaler, streams host.Streams, src parse.Source) (vals.Value, error) {
	defer streams.Flush()
	return ev.Eval(src)
}

// Shows an error from evaluating code.
func showError(w io.Writer, err error) {
	var e *vals.Error
	if errors.As(err, &e) {
		diag.Complainf(w, "%s: %s", e.Class, e.Message)
		return
	}
	diag.ShowError(w, err)
}
