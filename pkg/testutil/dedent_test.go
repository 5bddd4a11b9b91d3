package testutil

import "testing"

var dedentTests = []struct {
	in, want string
}{
	{"\n    a\n      b\n    c", "a\n  b\nc"},
	{"a\nb", "a\nb"},
	{"\n\t(defun f (X)\n\t  X)\n", "(defun f (X)\n  X)\n"},
	{"\n  a\n\n  b", "a\n\nb"},
}

func TestDedent(t *testing.T) {
	for _, test := range dedentTests {
		if got := Dedent(test.in); got != test.want {
			t.Errorf("Dedent(%q) -> %q, want %q", test.in, got, test.want)
		}
	}
}
