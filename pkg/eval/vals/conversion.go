package vals

// Casts used by primitives and generated code. Each checks that a value is of
// the required kind and returns it as the corresponding Go type, or returns a
// TypeError carrying the standard message.

// AsNumber requires a finite number.
func AsNumber(v Value) (float64, error) {
	if n, ok := v.(Num); ok && n.IsFinite() {
		return float64(n), nil
	}
	return 0, errNumberExpected
}

// AsNzNumber requires a finite number that is not zero. Zero is reported as an
// ArithmeticError, since it is only required by division.
func AsNzNumber(v Value) (float64, error) {
	f, err := AsNumber(v)
	if err != nil {
		return 0, err
	}
	return CheckNz(f)
}

// CheckNz checks that f is not zero.
func CheckNz(f float64) (float64, error) {
	if f == 0 {
		return 0, errDivisionByZero
	}
	return f, nil
}

// AsString requires a string.
func AsString(v Value) (string, error) {
	if s, ok := v.(Str); ok {
		return string(s), nil
	}
	return "", errStringExpected
}

// AsNeString requires a non-empty string.
func AsNeString(v Value) (string, error) {
	s, err := AsString(v)
	if err == nil && s == "" {
		return "", errNeStringExpected
	}
	return s, err
}

// AsSymbol requires a symbol.
func AsSymbol(v Value) (*Symbol, error) {
	if s, ok := v.(*Symbol); ok {
		return s, nil
	}
	return nil, errSymbolExpected
}

// AsCons requires a Cons.
func AsCons(v Value) (*Cons, error) {
	if c, ok := v.(*Cons); ok {
		return c, nil
	}
	return nil, errConsExpected
}

// AsVector requires a vector.
func AsVector(v Value) (*Vector, error) {
	if a, ok := v.(*Vector); ok {
		return a, nil
	}
	return nil, errVectorExpected
}

// AsError requires an error value.
func AsError(v Value) (*Error, error) {
	if e, ok := v.(*Error); ok {
		return e, nil
	}
	return nil, errErrorExpected
}

// AsStream requires a stream.
func AsStream(v Value) (Stream, error) {
	if s, ok := v.(Stream); ok {
		return s, nil
	}
	return nil, errStreamExpected
}

// AsInStream requires an input stream.
func AsInStream(v Value) (InStream, error) {
	if s, ok := v.(InStream); ok {
		return s, nil
	}
	return nil, errInStreamExpected
}

// AsOutStream requires an output stream.
func AsOutStream(v Value) (OutStream, error) {
	if s, ok := v.(OutStream); ok {
		return s, nil
	}
	return nil, errOutStreamExpected
}

// AsBool requires one of the logical symbols true and false, and converts it to
// a Go bool.
func AsBool(v Value) (bool, error) {
	switch v {
	case True:
		return true, nil
	case False:
		return false, nil
	}
	return false, errBoolExpected
}

// AsIndex requires an integral number within [0, n).
func AsIndex(v Value, n int) (int, error) {
	f, err := AsNumber(v)
	if err != nil {
		return 0, err
	}
	return CheckIndex(f, n)
}

// CheckIndex checks that f is an integer within [0, n).
func CheckIndex(f float64, n int) (int, error) {
	i := int(f)
	if float64(i) != f {
		return 0, LookupErrorf("index %s is not valid", FormatNum(f))
	}
	if i < 0 || i >= n {
		return 0, LookupErrorf("index %d is not within bounds of [0, %d)", i, n)
	}
	return i, nil
}
