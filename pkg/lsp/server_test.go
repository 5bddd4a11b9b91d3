package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.kl.sh/pkg/prog"
)

const testURI = lsp.DocumentURI("file:///foo.kl")

type client struct {
	*jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *client {
	serverSide, clientSide := net.Pipe()
	ctx := context.Background()
	serverConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		handler(newServer()))

	diags := make(chan lsp.PublishDiagnosticsParams, 10)
	clientConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
				var params lsp.PublishDiagnosticsParams
				if err := json.Unmarshal(*req.Params, &params); err == nil {
					diags <- params
				}
			}
			return nil, nil
		}))
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})
	return &client{clientConn, diags}
}

func (c *client) call(t *testing.T, method string, params, result any) {
	t.Helper()
	if err := c.Call(context.Background(), method, params, result); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func (c *client) open(t *testing.T, content string) []lsp.Diagnostic {
	t.Helper()
	c.call(t, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: testURI, Text: content}}, nil)
	return c.nextDiagnostics(t)
}

func (c *client) change(t *testing.T, content string) []lsp.Diagnostic {
	t.Helper()
	c.call(t, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: testURI}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: content}}}, nil)
	return c.nextDiagnostics(t)
}

func (c *client) nextDiagnostics(t *testing.T) []lsp.Diagnostic {
	t.Helper()
	select {
	case params := <-c.diags:
		if params.URI != testURI {
			t.Errorf("got diagnostics for %s, want %s", params.URI, testURI)
		}
		return params.Diagnostics
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
		return nil
	}
}

func position(params lsp.DocumentURI, line, char int) lsp.TextDocumentPositionParams {
	return lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: params},
		Position:     lsp.Position{Line: line, Character: char}}
}

func lspRange(l1, c1, l2, c2 int) lsp.Range {
	return lsp.Range{Start: lsp.Position{Line: l1, Character: c1}, End: lsp.Position{Line: l2, Character: c2}}
}

func TestInitialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	c.call(t, "initialize", lsp.InitializeParams{}, &result)
	caps := result.Capabilities
	if !caps.HoverProvider || caps.CompletionProvider == nil ||
		caps.TextDocumentSync == nil || caps.TextDocumentSync.Options == nil ||
		caps.TextDocumentSync.Options.Change != lsp.TDSKFull {
		t.Errorf("got capabilities %+v", caps)
	}
}

func TestDiagnostics(t *testing.T) {
	c := setup(t)

	diags := c.open(t, "(+ 1")
	want := []lsp.Diagnostic{{
		Range: lspRange(0, 0, 0, 4), Severity: lsp.Error, Source: "parse",
		Message: "form not terminated, should be ')'"}}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}

	diags = c.change(t, "1\n(if)")
	want = []lsp.Diagnostic{{
		Range: lspRange(1, 0, 1, 4), Severity: lsp.Error, Source: "compile",
		Message: "if requires 3 arguments, got 0"}}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}

	// Runtime errors are not reported since the code is never run.
	diags = c.change(t, `(+ 1 2) (simple-error "x")`)
	if len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", diags)
	}
}

func TestHover(t *testing.T) {
	c := setup(t)
	c.open(t, "(defun double (X) (* X 2))\n(hd (double 2))")

	for _, test := range []struct {
		line, char int
		want       string
		wantRange  lsp.Range
	}{
		{1, 2, "primitive function hd of 1 arguments", lspRange(1, 1, 1, 3)},
		{1, 7, "function double of 1 arguments", lspRange(1, 5, 1, 11)},
	} {
		var result lsp.Hover
		c.call(t, "textDocument/hover", position(testURI, test.line, test.char), &result)
		if len(result.Contents) != 1 || result.Contents[0].Value != test.want {
			t.Errorf("hover at %d:%d got %v, want %q", test.line, test.char, result.Contents, test.want)
		}
		if result.Range == nil || *result.Range != test.wantRange {
			t.Errorf("hover at %d:%d got range %v, want %v", test.line, test.char, result.Range, test.wantRange)
		}
	}

	var result *lsp.Hover
	c.call(t, "textDocument/hover", position(testURI, 1, 13), &result)
	if result != nil {
		t.Errorf("hover on a number got %v, want null", result)
	}
}

func TestCompletion(t *testing.T) {
	c := setup(t)
	c.open(t, "(defun double (X) (* X 2))\n(dou) (tls)\n  x")

	labels := func(line, char int) []string {
		var items []lsp.CompletionItem
		c.call(t, "textDocument/completion", lsp.CompletionParams{
			TextDocumentPositionParams: position(testURI, line, char)}, &items)
		labels := []string{}
		for _, item := range items {
			labels = append(labels, item.Label)
			if item.Kind != lsp.CIKFunction || item.TextEdit == nil {
				t.Errorf("got item %+v", item)
			}
		}
		return labels
	}

	if diff := cmp.Diff([]string{"double"}, labels(1, 4)); diff != "" {
		t.Errorf("completion (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tlstr"}, labels(1, 10)); diff != "" {
		t.Errorf("completion (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, labels(2, 3)); diff != "" {
		t.Errorf("completion (-want +got):\n%s", diff)
	}

	var items []lsp.CompletionItem
	c.call(t, "textDocument/completion", lsp.CompletionParams{
		TextDocumentPositionParams: position(testURI, 1, 10)}, &items)
	if len(items) == 1 && items[0].TextEdit.Range != lspRange(1, 7, 1, 10) {
		t.Errorf("got range %v", items[0].TextEdit.Range)
	}
}

func TestErrors(t *testing.T) {
	c := setup(t)
	err := c.Call(context.Background(), "nonexistent/method", nil, nil)
	var rpcErr *jsonrpc2.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}

	err = c.Call(context.Background(), "textDocument/hover", []int{1}, nil)
	if !errors.As(err, &rpcErr) || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Errorf("got error %v, want invalid params", err)
	}
}

func TestProgram_NotSuitableWithoutFlag(t *testing.T) {
	err := Program{}.Run([3]*os.File{os.Stdin, os.Stdout, os.Stderr}, &prog.Flags{}, nil)
	if err != prog.ErrNotSuitable {
		t.Errorf("got error %v, want ErrNotSuitable", err)
	}
}

func TestPositionConversion(t *testing.T) {
	s := "a\r\nb\n日本"
	for _, test := range []struct {
		idx int
		pos lsp.Position
	}{
		{0, lsp.Position{Line: 0, Character: 0}},
		{5, lsp.Position{Line: 2, Character: 0}},
		{8, lsp.Position{Line: 2, Character: 1}},
		{11, lsp.Position{Line: 2, Character: 2}},
	} {
		if got := lspPositionFromIdx(s, test.idx); got != test.pos {
			t.Errorf("lspPositionFromIdx(%d) -> %v, want %v", test.idx, got, test.pos)
		}
		if got := lspPositionToIdx(s, test.pos); got != test.idx {
			t.Errorf("lspPositionToIdx(%v) -> %d, want %d", test.pos, got, test.idx)
		}
	}

	// A new line starts right after \r, so the \n of \r\n is already on it.
	if got := lspPositionFromIdx(s, 3); got != (lsp.Position{Line: 1, Character: 0}) {
		t.Errorf("lspPositionFromIdx(3) -> %v, want 1:0", got)
	}
	if got := lspPositionToIdx(s, lsp.Position{Line: 1, Character: 0}); got != 2 {
		t.Errorf("lspPositionToIdx(1:0) -> %d, want 2", got)
	}
}
