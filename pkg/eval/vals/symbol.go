package vals

import "sync"

// Symbol is an interned name. Symbols with the same name are the same pointer,
// so they can be compared with ==.
type Symbol struct {
	name string
}

func (*Symbol) Kind() string { return KindSymbol }

// Name returns the name of the symbol.
func (s *Symbol) Name() string { return s.name }

func (s *Symbol) String() string { return s.name }

// The intern table is shared by all sessions in the process.
var symbols = struct {
	sync.Mutex
	m map[string]*Symbol
}{m: make(map[string]*Symbol)}

// Intern returns the canonical Symbol with the given name, creating it on
// first use.
func Intern(name string) *Symbol {
	symbols.Lock()
	defer symbols.Unlock()
	if s, ok := symbols.m[name]; ok {
		return s
	}
	s := &Symbol{name}
	symbols.m[name] = s
	return s
}

// The logical values.
var (
	True  = Intern("true")
	False = Intern("false")
)

// FromBool converts a Go bool to True or False.
func FromBool(b bool) *Symbol {
	if b {
		return True
	}
	return False
}
