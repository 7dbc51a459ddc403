package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateCommand is returned when a command name is already taken.
var ErrDuplicateCommand = errors.New("duplicate command")

// Registry stores commands by name. It is filled during startup and only read
// afterwards, so it does no locking.
type Registry struct {
	commands map[string]*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register validates c, wraps its handler with mws and adds it. The first
// middleware in the list is the outermost.
func (r *Registry) Register(c *Command, mws ...Middleware) error {
	if err := validate(c); err != nil {
		return err
	}
	if _, exists := r.commands[c.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, c.Name)
	}

	registered := *c
	registered.Handler = Apply(c.Handler, mws...)
	r.commands[c.Name] = &registered
	return nil
}

// Merge adds every command of other. Nothing is added if any name collides.
func (r *Registry) Merge(other *Registry) error {
	var errs []error
	for name := range other.commands {
		if _, exists := r.commands[name]; exists {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateCommand, name))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for name, c := range other.commands {
		r.commands[name] = c
	}
	return nil
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (*Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// All returns all registered commands, sorted by name.
func (r *Registry) All() []*Command {
	list := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

func validate(c *Command) error {
	if c == nil {
		return errors.New("command is nil")
	}
	if c.Name == "" || strings.ContainsAny(c.Name, " \t\n") {
		return fmt.Errorf("invalid command name %q", c.Name)
	}
	if c.Handler == nil {
		return fmt.Errorf("command %q has no handler", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Args))
	for _, spec := range c.Args {
		if spec.Name == "" {
			return fmt.Errorf("command %q has an unnamed argument", c.Name)
		}
		if spec.Type == nil {
			return fmt.Errorf("command %q argument %q has no type", c.Name, spec.Name)
		}
		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("command %q declares argument %q twice", c.Name, spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}
	return nil
}
