package args

import (
	"regexp"
	"strconv"
	"strings"
)

// Type recognises and converts one kind of argument token.
type Type interface {
	// Name is the label shown in usage text, e.g. "User".
	Name() string
	// Plural is the label used when an argument takes several tokens.
	Plural() string
	Pattern() *regexp.Regexp
	Convert(r Resolver, raw string) (any, error)
}

// ConvertFunc converts a matched token into a value.
type ConvertFunc func(r Resolver, raw string) (any, error)

type basicType struct {
	name    string
	plural  string
	pattern *regexp.Regexp
	convert ConvertFunc
}

func (t *basicType) Name() string                                { return t.name }
func (t *basicType) Plural() string                              { return t.plural }
func (t *basicType) Pattern() *regexp.Regexp                     { return t.pattern }
func (t *basicType) Convert(r Resolver, raw string) (any, error) { return t.convert(r, raw) }
func (t *basicType) String() string                              { return t.name }

// NewType builds a custom argument type. plural defaults to name + "s".
func NewType(name, plural, pattern string, convert ConvertFunc) Type {
	if plural == "" {
		plural = name + "s"
	}
	return &basicType{name: name, plural: plural, pattern: Compile(pattern), convert: convert}
}

var (
	// Any accepts any run of non-space characters as a string.
	Any = NewType("Any", "Any", `[^ ]+`, func(_ Resolver, raw string) (any, error) {
		return raw, nil
	})

	// String accepts a bare word or a quoted phrase, returning it unquoted.
	String = NewType("String", "Strings", `"[^"\n]+"|'[^'\n]+'|[^ \n]+`, convertString)

	// Number accepts integers and decimals. Integers convert to int, decimals
	// to float64.
	Number = NewType("Number", "Numbers", `-?\d+(\.\d+)?`, convertNumber)
)

func convertString(_ Resolver, raw string) (any, error) {
	return Unquote(raw), nil
}

// Unquote strips one pair of matching surrounding quotes.
func Unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func convertNumber(_ Resolver, raw string) (any, error) {
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, newError(ErrWrongType, "`%s` is not a number.", raw)
		}
		return f, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, newError(ErrWrongType, "`%s` is not a number.", raw)
	}
	return n, nil
}
