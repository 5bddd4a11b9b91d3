package vals

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntern(t *testing.T) {
	if Intern("abc") != Intern("abc") {
		t.Errorf("Intern returned different symbols for the same name")
	}
	if Intern("abc") == Intern("abd") {
		t.Errorf("Intern returned the same symbol for different names")
	}
	if Intern("true") != True || FromBool(false) != False {
		t.Errorf("logical symbols are not interned")
	}
}

func TestListToSlice(t *testing.T) {
	vs, err := ListToSlice(List(Num(1), Str("a")))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Value{Num(1), Str("a")}, vs); diff != "" {
		t.Errorf("ListToSlice (-want +got):\n%s", diff)
	}
	if vs, err := ListToSlice(Nil); err != nil || len(vs) != 0 {
		t.Errorf("ListToSlice(Nil) -> %v, %v", vs, err)
	}
	if _, err := ListToSlice(NewCons(Num(1), Num(2))); err == nil {
		t.Errorf("ListToSlice of improper list did not fail")
	}
	if IsList(NewCons(Num(1), Num(2))) || !IsList(List(Num(1))) {
		t.Errorf("IsList wrong")
	}
}
