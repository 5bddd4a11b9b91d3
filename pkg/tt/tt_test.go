package tt

import (
	"fmt"
	"strings"
	"testing"
)

// recordT implements the T interface and records errors.
type recordT []string

func (t *recordT) Helper() {}

func (t *recordT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

func addsub(x, y int) (int, int) { return x + y, x - y }

type positive struct{}

func (positive) Match(v any) bool { return v.(int) > 0 }

func TestTest_Pass(t *testing.T) {
	var rt recordT
	Test(&rt, Fn("addsub", addsub), Table{
		Args(1, 10).Rets(11, -9),
		Args(5, 1).Rets(positive{}, Any),
	})
	if len(rt) > 0 {
		t.Errorf("got errors %v, want none", rt)
	}
}

func TestTest_Fail(t *testing.T) {
	var rt recordT
	Test(&rt, Fn("addsub", addsub), Table{
		Args(1, 10).Rets(12, -9),
		Args(1, 10).Rets(positive{}, positive{}),
	})
	if len(rt) != 2 {
		t.Fatalf("got %d errors, want 2", len(rt))
	}
	if !strings.HasPrefix(rt[0], "addsub(1, 10) return value #0 (-want +got):") {
		t.Errorf("unexpected message %q", rt[0])
	}
	if !strings.Contains(rt[1], "return value #1 is -9") {
		t.Errorf("unexpected message %q", rt[1])
	}
}
