// Package logutil provides loggers that write to a process-wide output, which
// discards everything until SetOutput or SetOutputFile is called.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	out     = io.Discard
	loggers []*log.Logger
	lock    sync.Mutex
)

// Discard is a Logger that ignores all loggings.
var Discard = log.New(io.Discard, "", 0)

// GetLogger gets a logger with the given prefix. Its output follows the
// process-wide output.
func GetLogger(prefix string) *log.Logger {
	lock.Lock()
	defer lock.Unlock()
	logger := log.New(out, prefix, log.LstdFlags)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to the
// new io.Writer. If the old output was a file opened by SetOutputFile, it is
// closed.
func SetOutput(newout io.Writer) {
	lock.Lock()
	defer lock.Unlock()
	oldout := out
	out = newout
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
	if f, ok := oldout.(*os.File); ok && f != newout && opened[f] {
		delete(opened, f)
		f.Close()
	}
}

var opened = map[*os.File]bool{}

// SetOutputFile redirects the output of all loggers obtained with GetLogger to
// the named file. The file is truncated. If the name is empty, logs are
// discarded.
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	lock.Lock()
	opened[file] = true
	lock.Unlock()
	SetOutput(file)
	return nil
}
