package vals

// Stream is an I/O handle owned by the host environment.
type Stream interface {
	Value
	// Name returns a description of the stream, like a file path.
	Name() string
	// Close closes the stream.
	Close() error
}

// InStream is a Stream that can be read from.
type InStream interface {
	Stream
	// GetByte reads one byte, returning -1 at the end of the stream.
	GetByte() (int, error)
}

// OutStream is a Stream that can be written to.
type OutStream interface {
	Stream
	// PutByte writes one byte.
	PutByte(b byte) error
}
