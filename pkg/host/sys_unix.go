//go:build !windows
// +build !windows

package host

import (
	"os"

	"golang.org/x/sys/unix"
)

// OSName returns the name of the operating system, as reported by uname.
func OSName() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		logger.Println("uname:", err)
		return "Unix"
	}
	return unix.ByteSliceToString(uts.Sysname[:])
}

func dupFile(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), f.Name()), nil
}
