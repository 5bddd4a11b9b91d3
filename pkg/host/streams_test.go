package host

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/must"
	"src.kl.sh/pkg/testutil"
)

func TestOpenReadAndWrite(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "f")

	s, err := OpenWrite(path)
	require.NoError(t, err)
	out, ok := s.(vals.OutStream)
	require.True(t, ok)
	assert.Equal(t, path, out.Name())
	for _, b := range []byte("hi") {
		require.NoError(t, out.PutByte(b))
	}
	require.NoError(t, out.Close())
	assert.Equal(t, "hi", must.ReadFileString(path))

	s, err = OpenRead(path)
	require.NoError(t, err)
	in, ok := s.(vals.InStream)
	require.True(t, ok)
	var got []int
	for i := 0; i < 3; i++ {
		b, err := in.GetByte()
		require.NoError(t, err)
		got = append(got, b)
	}
	assert.Equal(t, []int{'h', 'i', -1}, got)
	require.NoError(t, in.Close())
}

func TestOpenWrite_Truncates(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "f")
	must.WriteFile(path, "old content")
	s, err := OpenWrite(path)
	require.NoError(t, err)
	require.NoError(t, s.(vals.OutStream).PutByte('x'))
	require.NoError(t, s.Close())
	assert.Equal(t, "x", must.ReadFileString(path))
}

func TestOpenRead_NonExistent(t *testing.T) {
	_, err := OpenRead(filepath.Join(testutil.TempDir(t), "nope"))
	assert.True(t, os.IsNotExist(err))
}

func TestOutFile_FlushesOnNewline(t *testing.T) {
	r, w := must.Pipe()
	defer r.Close()
	out := NewOutFile("pipe", w)
	for _, b := range []byte("a\n") {
		require.NoError(t, out.PutByte(b))
	}
	buf := make([]byte, 2)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(buf[:n]))
	require.NoError(t, out.Close())
}

func TestStdStreams_CloseLeavesFilesOpen(t *testing.T) {
	r, w := must.Pipe()
	defer r.Close()
	defer w.Close()
	streams := StdStreams([3]*os.File{r, w, w})
	assert.Equal(t, "stdin", streams.Stdin.Name())
	assert.Equal(t, "stderr", streams.Stderr.Name())

	require.NoError(t, streams.Stdout.Close())
	_, err := w.Write([]byte("x"))
	assert.NoError(t, err)
}

func TestClock(t *testing.T) {
	now := float64(time.Now().Unix())
	assert.InDelta(t, now, Clock(), 5)
}

func TestOSName(t *testing.T) {
	assert.NotEmpty(t, OSName())
}
