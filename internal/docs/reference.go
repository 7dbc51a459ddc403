// Package docs renders a Markdown command reference from the loaded
// plugins.
package docs

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/keshon/detache/internal/plugin"
)

// DefaultTemplate wraps the generated sections. Custom templates get the
// same data: .Title and .CommandSections.
const DefaultTemplate = `# {{.Title}} commands

{{.CommandSections}}`

type section struct {
	name     string
	commands []string
}

// Reference writes the reference for every plugin's commands, one section
// per plugin in load order, commands sorted by name.
func Reference(w io.Writer, title, prefix string, plugins []*plugin.Plugin, tmplText string) error {
	if tmplText == "" {
		tmplText = DefaultTemplate
	}
	tmpl, err := template.New("reference").Parse(tmplText)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	var sections []section
	for _, p := range plugins {
		cmds := p.Commands().All()
		if len(cmds) == 0 {
			continue
		}
		s := section{name: p.Name()}
		for _, c := range cmds {
			var b strings.Builder
			fmt.Fprintf(&b, "- **`%s%s`**", prefix, c.Name)
			if c.Description != "" {
				b.WriteString(" - " + c.Description)
			}
			fmt.Fprintf(&b, "\n\n  ```\n%s\n  ```\n", indent(plain(c.Usage(prefix)), "  "))
			s.commands = append(s.commands, b.String())
		}
		sections = append(sections, s)
	}

	var buf strings.Builder
	for i, s := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "### %s\n\n", s.name)
		buf.WriteString(strings.Join(s.commands, "\n"))
	}

	data := struct {
		Title           string
		CommandSections string
	}{Title: title, CommandSections: buf.String()}
	return tmpl.Execute(w, data)
}

// plain strips chat bold markers so usage reads well inside a code block.
func plain(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

func indent(s, pad string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
