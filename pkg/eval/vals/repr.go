package vals

import (
	"math"
	"strconv"
	"strings"
)

// Reprer wraps the Repr method. Values outside this package, like functions
// and streams, implement it to control how str shows them.
type Reprer interface {
	Repr() string
}

// Repr returns the representation of a value, as produced by the str
// primitive.
func Repr(v Value) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

func writeRepr(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case Empty:
		sb.WriteString("[]")
	case Num:
		sb.WriteString(FormatNum(float64(v)))
	case Str:
		sb.WriteByte('"')
		sb.WriteString(string(v))
		sb.WriteByte('"')
	case *Symbol:
		sb.WriteString(v.name)
	case *Cons:
		sb.WriteByte('[')
		writeRepr(sb, v.Head)
		var rest Value = v.Tail
	loop:
		for {
			switch r := rest.(type) {
			case Empty:
				break loop
			case *Cons:
				sb.WriteByte(' ')
				writeRepr(sb, r.Head)
				rest = r.Tail
			default:
				sb.WriteString(" | ")
				writeRepr(sb, r)
				break loop
			}
		}
		sb.WriteByte(']')
	case *Vector:
		sb.WriteString("<Vector " + strconv.Itoa(len(v.elems)) + ">")
	case *Error:
		sb.WriteString(`<Error "` + v.Message + `">`)
	case Stream:
		sb.WriteString("<Stream " + v.Name() + ">")
	case Reprer:
		sb.WriteString(v.Repr())
	default:
		sb.WriteString("<" + v.Kind() + ">")
	}
}

// FormatNum formats a number the way str shows it: integers have no fractional
// part, and very large or small numbers use an exponent.
func FormatNum(f float64) string {
	switch {
	case f == 0:
		return "0"
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
