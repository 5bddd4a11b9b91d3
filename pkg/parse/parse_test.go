package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval/vals"
)

var (
	sym  = vals.Intern
	list = vals.List
)

var parseAllTests = []struct {
	name string
	code string
	want []vals.Value
}{
	{"empty source", "", nil},
	{"whitespace only", " \n\t ", nil},
	{"symbols", `abc x'{ .<?/^`, []vals.Value{sym("abc"), sym("x'{"), sym(".<?/^")}},
	{"empty string", `""`, []vals.Value{vals.Str("")}},
	{"string with whitespace", "\"a \n\tb\"", []vals.Value{vals.Str("a \n\tb")}},
	{"string with punctuation", `"^&*()_+'<"`, []vals.Value{vals.Str("^&*()_+'<")}},
	{"string with backslash", `"a\"`, []vals.Value{vals.Str(`a\`)}},
	{"integers", "0 5 287 -4 +3", []vals.Value{
		vals.Num(0), vals.Num(5), vals.Num(287), vals.Num(-4), vals.Num(3)}},
	{"decimals", "1.5 -0.25", []vals.Value{vals.Num(1.5), vals.Num(-0.25)}},
	{"number-like symbols", "- + 1. .5 1a 1.2.3", []vals.Value{
		sym("-"), sym("+"), sym("1."), sym(".5"), sym("1a"), sym("1.2.3")}},
	{"empty list", "()", []vals.Value{vals.Nil}},
	{"list", "(abc def)", []vals.Value{list(sym("abc"), sym("def"))}},
	{"nested lists", "(if (>= 0 X) X (* -1 X))", []vals.Value{
		list(sym("if"),
			list(sym(">="), vals.Num(0), sym("X")),
			sym("X"),
			list(sym("*"), vals.Num(-1), sym("X")))}},
	{"quote inside symbol", `(a"b"(c))`, []vals.Value{
		list(sym(`a"b"`), list(sym("c")))}},
	{"string then symbol", `("b"c)`, []vals.Value{
		list(vals.Str("b"), sym("c"))}},
	{"multiple forms", "(defun f (X) X)\n(f 1)", []vals.Value{
		list(sym("defun"), sym("f"), list(sym("X")), sym("X")),
		list(sym("f"), vals.Num(1))}},
}

func TestParseAll(t *testing.T) {
	for _, test := range parseAllTests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseAll(test.code)
			if err != nil {
				t.Fatalf("got error %v", err)
			}
			if diff := cmp.Diff(test.want, got, cmp.Comparer(vals.Equal)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

var parseErrorTests = []struct {
	code       string
	msg        string
	rng        diag.Ranging
	incomplete bool
}{
	{`"abc`, msgUnterminatedString, diag.Ranging{From: 0, To: 4}, true},
	{`(a "b`, msgUnterminatedString, diag.Ranging{From: 3, To: 5}, true},
	{"(a (b c)", msgUnterminatedForm, diag.Ranging{From: 0, To: 8}, true},
	{"(a (b\n", msgUnterminatedForm, diag.Ranging{From: 3, To: 6}, true},
	{"a)", msgUnexpectedRParen, diag.Ranging{From: 1, To: 2}, false},
	{"(a))", msgUnexpectedRParen, diag.Ranging{From: 3, To: 4}, false},
}

func TestParse_Errors(t *testing.T) {
	for _, test := range parseErrorTests {
		tree, err := Parse(SourceForTest(test.code))
		if tree != nil {
			t.Errorf("Parse(%q) returned non-nil tree on error", test.code)
		}
		e := diag.GetError(err, ErrorType)
		if e == nil {
			t.Errorf("Parse(%q) returned %v, want a parse error", test.code, err)
			continue
		}
		if e.Message != test.msg {
			t.Errorf("Parse(%q) message %q, want %q", test.code, e.Message, test.msg)
		}
		if e.Range() != test.rng {
			t.Errorf("Parse(%q) range %v, want %v", test.code, e.Range(), test.rng)
		}
		if IsIncomplete(err) != test.incomplete {
			t.Errorf("IsIncomplete for %q is %v, want %v", test.code, !test.incomplete, test.incomplete)
		}
	}
}

func TestParse_Ranges(t *testing.T) {
	code := "(defun f (X)\n  (g X))  x"
	tree, err := Parse(SourceForTest(code))
	if err != nil {
		t.Fatal(err)
	}
	wantForms := []diag.Ranging{{From: 0, To: 21}, {From: 23, To: 24}}
	if diff := cmp.Diff(wantForms, tree.FormRanges); diff != "" {
		t.Errorf("FormRanges (-want +got):\n%s", diff)
	}
	defun := tree.Forms[0].(*vals.Cons)
	if r := tree.Range(defun); r != (diag.Ranging{From: 0, To: 21}) {
		t.Errorf("range of defun form is %v", r)
	}
	body := defun.Tail.(*vals.Cons).Tail.(*vals.Cons).Tail.(*vals.Cons).Head.(*vals.Cons)
	if r := tree.Range(body); code[r.From:r.To] != "(g X)" {
		t.Errorf("range of body is %v, covering %q", r, code[r.From:r.To])
	}
	if r := tree.Range(vals.NewCons(vals.Nil, vals.Nil)); r.Known() {
		t.Errorf("range of foreign cons is known: %v", r)
	}
	var nilTree *Tree
	if nilTree.Range(defun).Known() {
		t.Errorf("nil tree knows a range")
	}
}
