package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/parse"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	evaler  *eval.Evaler
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{eval.NewEvaler(eval.Config{}), make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"initialized":                     noop,
		"shutdown":                        noop,
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{TriggerCharacters: []string{"("}},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// Only full-text changes are advertised in initialize.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	idx := lspPositionToIdx(content, params.Position)
	from, to := symbolAround(content, idx)
	name := content[from:to]
	if name == "" {
		return nil, nil
	}
	var doc string
	if fn, ok := s.evaler.Function(name); ok {
		doc = fmt.Sprintf("primitive function %s of %d arguments", name, fn.Arity())
	} else if arity, ok := definedFunctions(content)[name]; ok {
		doc = fmt.Sprintf("function %s of %d arguments", name, arity)
	} else {
		return nil, nil
	}
	r := lspRangeFromRange(content, diag.Ranging{From: from, To: to})
	return lsp.Hover{Contents: []lsp.MarkedString{lsp.RawMarkedString(doc)}, Range: &r}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	idx := lspPositionToIdx(content, params.Position)
	from, _ := symbolAround(content, idx)
	if from == 0 || content[from-1] != '(' {
		return []lsp.CompletionItem{}, nil
	}
	prefix := content[from:idx]

	names := s.evaler.FunctionNames()
	for name := range definedFunctions(content) {
		if _, ok := s.evaler.Function(name); !ok {
			names = append(names, name)
		}
	}
	lspRange := lspRangeFromRange(content, diag.Ranging{From: from, To: idx})
	items := []lsp.CompletionItem{}
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		items = append(items, lsp.CompletionItem{
			Label: name,
			Kind:  lsp.CIKFunction,
			TextEdit: &lsp.TextEdit{
				Range:   lspRange,
				NewText: name,
			},
		})
	}
	return items, nil
}

func (s *server) publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	err := conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: s.diagnostics(uri, content)})
	if err != nil {
		logger.Println("publish diagnostics:", err)
	}
}

// Parses and compiles the content without running it. Both steps stop at the
// first error, so there is at most one diagnostic.
func (s *server) diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	err := s.evaler.Check(parse.Source{Name: string(uri), Code: content})
	if err == nil {
		return []lsp.Diagnostic{}
	}
	d := lsp.Diagnostic{Severity: lsp.Error, Message: err.Error()}
	if e := diag.GetError(err, parse.ErrorType); e != nil {
		d.Range, d.Source, d.Message = lspRangeFromRange(content, e), "parse", e.Message
	} else if e := eval.GetCompilationError(err); e != nil {
		d.Range, d.Source, d.Message = lspRangeFromRange(content, e), "compile", e.Message
	}
	return []lsp.Diagnostic{d}
}

// Returns the names and arities of the functions defined with top-level defun
// forms. Content that doesn't parse has none.
func definedFunctions(content string) map[string]int {
	defined := make(map[string]int)
	tree, err := parse.Parse(parse.Source{Code: content})
	if err != nil {
		return defined
	}
	for _, form := range tree.Forms {
		elems, err := vals.ListToSlice(form)
		if err != nil || len(elems) != 4 || elems[0] != vals.Value(vals.Intern("defun")) {
			continue
		}
		name, ok := elems[1].(*vals.Symbol)
		if !ok {
			continue
		}
		if params, err := vals.ListToSlice(elems[2]); err == nil {
			defined[name.Name()] = len(params)
		}
	}
	return defined
}

// Returns the range of the symbol that contains or ends at idx.
func symbolAround(s string, idx int) (int, int) {
	from, to := idx, idx
	for from > 0 && !isDelimiter(s[from-1]) {
		from--
	}
	for to < len(s) && !isDelimiter(s[to]) {
		to++
	}
	return from, to
}

func isDelimiter(b byte) bool {
	return strings.IndexByte("() \t\r\n\"", b) >= 0
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
