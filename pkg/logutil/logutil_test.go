package logutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetLogger_FollowsSetOutput(t *testing.T) {
	logger := GetLogger("[test] ")
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	logger.Println("hello")
	if !strings.Contains(buf.String(), "[test] ") || !strings.HasSuffix(buf.String(), "hello\n") {
		t.Errorf("got log %q", buf.String())
	}

	late := GetLogger("[late] ")
	late.Println("world")
	if !strings.HasSuffix(buf.String(), "world\n") {
		t.Errorf("logger created after SetOutput did not use the output")
	}
}

func TestSetOutputFile(t *testing.T) {
	logger := GetLogger("[file] ")
	fname := filepath.Join(t.TempDir(), "log")
	if err := SetOutputFile(fname); err != nil {
		t.Fatal(err)
	}
	logger.Println("to file")
	if err := SetOutputFile(""); err != nil {
		t.Fatal(err)
	}
	logger.Println("discarded")

	content, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "to file") || strings.Contains(string(content), "discarded") {
		t.Errorf("log file has %q", content)
	}
}

func TestSetOutputFile_Error(t *testing.T) {
	err := SetOutputFile(filepath.Join(t.TempDir(), "no", "such", "dir", "log"))
	if err == nil {
		t.Errorf("want error")
	}
}
