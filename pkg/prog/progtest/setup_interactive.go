//go:build !windows
// +build !windows

package progtest

import (
	"os"

	"github.com/creack/pty"
	"src.kl.sh/pkg/testutil"
)

// OpenPty opens a pseudo-terminal for testing subprograms that behave
// differently when connected to a terminal. The program should be given tty;
// the test reads what it writes and writes its input through ptmx. Both are
// closed when the test finishes.
func OpenPty(c testutil.Cleanuper) (ptmx, tty *os.File, err error) {
	ptmx, tty, err = pty.Open()
	if err != nil {
		return nil, nil, err
	}
	c.Cleanup(func() {
		ptmx.Close()
		tty.Close()
	})
	return ptmx, tty, nil
}
