package otrs

import (
	"net/url"
	"strconv"
	"strings"
)

type paramKind int

const (
	paramAbsent paramKind = iota
	paramScalar
	paramList
)

// ParamValue is a query parameter value: absent, a scalar or an ordered list.
// The zero value is absent.
type ParamValue struct {
	kind   paramKind
	scalar string
	list   []string
}

// Absent is a value that contributes nothing to a query.
func Absent() ParamValue { return ParamValue{} }

// Scalar wraps a text value. Empty text is treated as absent.
func Scalar(s string) ParamValue {
	return ParamValue{kind: paramScalar, scalar: s}
}

// Int wraps an integer. Zero is kept as "0"; callers that mean "unset"
// should pass Absent instead.
func Int(n int) ParamValue {
	return ParamValue{kind: paramScalar, scalar: strconv.Itoa(n)}
}

// List wraps an ordered sequence, emitted as one key=value pair per element.
func List(values ...string) ParamValue {
	return ParamValue{kind: paramList, list: append([]string(nil), values...)}
}

// IntList is List for integer elements.
func IntList(values ...int) ParamValue {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return ParamValue{kind: paramList, list: out}
}

// IsEmpty reports whether the value would produce no query pairs.
func (v ParamValue) IsEmpty() bool {
	switch v.kind {
	case paramScalar:
		return v.scalar == ""
	case paramList:
		return len(v.list) == 0
	default:
		return true
	}
}

// AppendParam renders v as "&key=value" fragments. Values are query escaped.
// Empty values render as "".
func AppendParam(key string, v ParamValue) string {
	if v.IsEmpty() {
		return ""
	}
	var b strings.Builder
	switch v.kind {
	case paramScalar:
		writePair(&b, key, v.scalar)
	case paramList:
		for _, item := range v.list {
			writePair(&b, key, item)
		}
	}
	return b.String()
}

func writePair(b *strings.Builder, key, value string) {
	b.WriteByte('&')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}
