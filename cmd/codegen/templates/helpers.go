package templates

import (
	"strconv"
	"strings"
)

// prefixedStrings renders "T0, T1, ..." for count entries.
func prefixedStrings(prefix string, count int) string {
	return wrappedStrings(prefix, "", count)
}

func wrappedStrings(prefix, suffix string, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(suffix)
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

// typedParams renders "s0 Source[T0], s1 Source[T1], ..." for count entries.
func typedParams(name, typ string, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		idx := strconv.Itoa(i)
		sb.WriteString(name)
		sb.WriteString(idx)
		sb.WriteString(" ")
		sb.WriteString(typ)
		sb.WriteString("[T")
		sb.WriteString(idx)
		sb.WriteString("]")
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}
