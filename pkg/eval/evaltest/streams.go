package evaltest

import (
	"bytes"
	"strings"
	"sync"

	"src.kl.sh/pkg/eval/vals"
)

// OutBuffer is an output stream that keeps what is written to it.
type OutBuffer struct {
	name string
	mu   sync.Mutex
	buf  bytes.Buffer
}

// NewOutBuffer returns a new OutBuffer.
func NewOutBuffer(name string) *OutBuffer { return &OutBuffer{name: name} }

func (*OutBuffer) Kind() string   { return vals.KindStream }
func (b *OutBuffer) Name() string { return b.name }
func (*OutBuffer) Close() error   { return nil }

func (b *OutBuffer) PutByte(c byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.WriteByte(c)
}

// String returns everything written so far.
func (b *OutBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// InString is an input stream reading from a string.
type InString struct {
	name string
	r    *strings.Reader
}

// NewInString returns a new InString.
func NewInString(name, s string) *InString {
	return &InString{name, strings.NewReader(s)}
}

func (*InString) Kind() string   { return vals.KindStream }
func (s *InString) Name() string { return s.name }
func (*InString) Close() error   { return nil }

func (s *InString) GetByte() (int, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return -1, nil
	}
	return int(b), nil
}

// NewClock returns a fake clock. It starts at 1e9 seconds and advances by one
// second every time it is read.
func NewClock() func() float64 {
	var mu sync.Mutex
	t := 1e9
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		t++
		return t
	}
}
