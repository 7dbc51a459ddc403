package cmd

import (
	"fmt"
	"strings"

	"github.com/keshon/detache/pkg/args"
)

// Usage renders the help text for the command. It depends only on the
// schema, so the same command always renders the same text.
func (c *Command) Usage(prefix string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s**%s**", prefix, c.Name)
	for _, spec := range c.Args {
		b.WriteString(" ")
		b.WriteString(syntax(spec))
	}

	if len(c.Args) > 0 {
		b.WriteString("\n")
		for _, spec := range c.Args {
			fmt.Fprintf(&b, "\n• %s **%s**", typeLabel(spec), spec.Name)
			if !spec.Required {
				b.WriteString(" (optional)")
			}
			if spec.Help != "" {
				b.WriteString(" - " + spec.Help)
			}
		}
	}

	if c.Description != "" {
		b.WriteString("\n\n" + c.Description)
	}
	return b.String()
}

func syntax(spec args.Spec) string {
	s := spec.Name
	if !spec.Arity.Single() {
		s += "..."
	}
	if !spec.Required {
		s = "[" + s + "]"
	}
	return s
}

func typeLabel(spec args.Spec) string {
	switch spec.Arity.Kind {
	case args.ArityMany:
		return spec.Type.Plural()
	case args.ArityFixed:
		return fmt.Sprintf("up to %d %s", spec.Arity.N, spec.Type.Plural())
	default:
		return spec.Type.Name()
	}
}
