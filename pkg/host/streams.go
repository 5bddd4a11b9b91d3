package host

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"src.kl.sh/pkg/eval/vals"
)

// InFile is an input stream reading from a file.
type InFile struct {
	name string
	file *os.File
	mu   sync.Mutex
	r    *bufio.Reader
}

// NewInFile returns an InFile reading from file.
func NewInFile(name string, file *os.File) *InFile {
	return &InFile{name: name, file: file, r: bufio.NewReader(file)}
}

func (*InFile) Kind() string   { return vals.KindStream }
func (f *InFile) Name() string { return f.name }
func (f *InFile) Close() error { return f.file.Close() }

// GetByte reads a byte, returning -1 at the end of the file.
func (f *InFile) GetByte() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}
		return -1, err
	}
	return int(b), nil
}

// OutFile is an output stream writing to a file. Writes are buffered until
// Flush or Close is called, or a newline is written.
type OutFile struct {
	name string
	file *os.File
	mu   sync.Mutex
	w    *bufio.Writer
}

// NewOutFile returns an OutFile writing to file.
func NewOutFile(name string, file *os.File) *OutFile {
	return &OutFile{name: name, file: file, w: bufio.NewWriter(file)}
}

func (*OutFile) Kind() string   { return vals.KindStream }
func (f *OutFile) Name() string { return f.name }

// PutByte writes a byte.
func (f *OutFile) PutByte(b byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.w.WriteByte(b); err != nil {
		return err
	}
	if b == '\n' {
		return f.w.Flush()
	}
	return nil
}

// Flush writes out buffered bytes.
func (f *OutFile) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w.Flush()
}

// Close flushes buffered bytes and closes the file.
func (f *OutFile) Close() error {
	if err := f.Flush(); err != nil {
		f.file.Close()
		return err
	}
	return f.file.Close()
}

// OpenRead opens a file for reading.
func OpenRead(path string) (vals.Stream, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewInFile(path, file), nil
}

// OpenWrite opens a file for writing, creating it if it doesn't exist and
// truncating it otherwise.
func OpenWrite(path string) (vals.Stream, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return NewOutFile(path, file), nil
}

// Streams are the standard streams of a session.
type Streams struct {
	Stdin  *InFile
	Stdout *OutFile
	Stderr *OutFile

	dups []*os.File
}

// StdStreams wraps the given standard files as streams. Closing the streams
// from a program does not close the files.
func StdStreams(fds [3]*os.File) Streams {
	var s Streams
	files := make([]*os.File, 3)
	for i, f := range fds {
		if dup, err := dupFile(f); err == nil {
			files[i] = dup
			s.dups = append(s.dups, dup)
		} else {
			logger.Println("cannot duplicate", f.Name(), err)
			files[i] = f
		}
	}
	s.Stdin = NewInFile("stdin", files[0])
	s.Stdout = NewOutFile("stdout", files[1])
	s.Stderr = NewOutFile("stderr", files[2])
	return s
}

// Flush flushes the output streams.
func (s Streams) Flush() {
	s.Stdout.Flush()
	s.Stderr.Flush()
}

// Close flushes the output streams, and releases the resources used by the
// streams. The files passed to StdStreams are left open.
func (s Streams) Close() {
	s.Flush()
	for _, f := range s.dups {
		f.Close()
	}
}

// Clock returns the current time in seconds since the Unix epoch.
func Clock() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
