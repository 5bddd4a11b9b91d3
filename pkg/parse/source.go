package parse

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
	// IsFile is true when the source comes from a file, and Name is its path.
	IsFile bool
}

// SourceForTest returns a Source used for testing.
func SourceForTest(code string) Source {
	return Source{Name: "[test]", Code: code}
}
