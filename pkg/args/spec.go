package args

import "strings"

// ArityKind says how many tokens an argument may take.
type ArityKind int

const (
	ArityOne ArityKind = iota
	ArityMany
	ArityFixed
)

// Arity is the number of tokens an argument consumes.
type Arity struct {
	Kind ArityKind
	N    int
}

var (
	// One consumes exactly one token and yields a single value.
	One = Arity{Kind: ArityOne}
	// Many consumes every following token that matches and yields a list.
	Many = Arity{Kind: ArityMany}
)

// Fixed consumes at most n tokens and yields a list.
func Fixed(n int) Arity {
	if n < 1 {
		n = 1
	}
	return Arity{Kind: ArityFixed, N: n}
}

// Single reports whether the argument yields one value instead of a list.
func (a Arity) Single() bool { return a.Kind == ArityOne }

// Spec describes one named argument of a command.
type Spec struct {
	Name     string
	Type     Type
	Required bool
	Arity    Arity
	Default  any
	Help     string
}

// Arg starts a required single-token argument. A nil type means Any.
func Arg(name string, t Type) Spec {
	if t == nil {
		t = Any
	}
	return Spec{Name: name, Type: t, Required: true, Arity: One}
}

// Optional marks the argument as not required, falling back to def.
func (s Spec) Optional(def any) Spec {
	s.Required = false
	s.Default = def
	return s
}

// Many lets the argument take every matching token.
func (s Spec) Many() Spec {
	s.Arity = Many
	return s
}

// Fixed lets the argument take up to n tokens.
func (s Spec) Fixed(n int) Spec {
	s.Arity = Fixed(n)
	return s
}

// WithHelp sets the help line shown in usage text.
func (s Spec) WithHelp(help string) Spec {
	s.Help = help
	return s
}

// Consume parses this argument off the front of remaining and returns the
// value together with what is left. Single arguments yield the converted
// value (or Default), the others yield []any.
func (s Spec) Consume(r Resolver, remaining string) (any, string, error) {
	if s.Arity.Single() {
		v, rest, ok, err := s.next(r, remaining)
		if err != nil {
			return nil, remaining, err
		}
		if !ok {
			if s.Required {
				return nil, remaining, s.missing()
			}
			return s.Default, remaining, nil
		}
		return v, rest, nil
	}

	limit := -1
	if s.Arity.Kind == ArityFixed {
		limit = s.Arity.N
	}

	values := make([]any, 0)
	rest := remaining
	for limit < 0 || len(values) < limit {
		v, next, ok, err := s.next(r, rest)
		if err != nil {
			return nil, remaining, err
		}
		if !ok {
			break
		}
		values = append(values, v)
		rest = next
	}

	if len(values) == 0 && s.Required {
		return nil, remaining, s.missing()
	}
	return values, rest, nil
}

func (s Spec) next(r Resolver, remaining string) (any, string, bool, error) {
	token, rest, ok := Scan(s.Type.Pattern(), remaining)
	if !ok {
		return nil, remaining, false, nil
	}
	v, err := s.Type.Convert(r, token)
	if err != nil {
		return nil, remaining, false, err
	}
	return v, rest, true, nil
}

func (s Spec) missing() error {
	label := strings.ToLower(s.Type.Name())
	if !s.Arity.Single() {
		return newError(ErrMissingArgument, "**%s** needs at least one %s.", s.Name, label)
	}
	return newError(ErrMissingArgument, "**%s** is a required %s.", s.Name, label)
}
