package args

// Values maps argument names to their parsed values.
type Values map[string]any

// String returns the named value as a string, or "" if it is not one.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the named number truncated to an int.
func (v Values) Int(name string) int {
	switch n := v[name].(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// Float returns the named number as a float64.
func (v Values) Float(name string) float64 {
	switch n := v[name].(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func (v Values) Member(name string) *Member {
	m, _ := v[name].(*Member)
	return m
}

func (v Values) Channel(name string) *Channel {
	c, _ := v[name].(*Channel)
	return c
}

func (v Values) Role(name string) *Role {
	r, _ := v[name].(*Role)
	return r
}

// List returns a Many or Fixed argument's values.
func (v Values) List(name string) []any {
	l, _ := v[name].([]any)
	return l
}

// Strings returns a list argument's string values.
func (v Values) Strings(name string) []string {
	var out []string
	for _, item := range v.List(name) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether the named value is present and not nil.
func (v Values) Has(name string) bool {
	return v[name] != nil
}
