package cmd

import (
	"context"
	"fmt"

	"github.com/keshon/detache/pkg/args"
)

// Handler runs a command. A non-empty reply is sent back to the invoker.
type Handler func(ctx context.Context, inv *Invocation) (string, error)

// Command binds a name to its argument schema and handler. Args are consumed
// in the order they are declared. A Command must not be modified once it has
// been registered.
type Command struct {
	Name        string
	Description string
	Args        []args.Spec
	Permissions []Permission
	Handler     Handler
}

// Process runs the command for one invocation: permissions first, then the
// argument string, then the handler.
func (c *Command) Process(ctx context.Context, inv *Invocation, argString string) error {
	if err := c.checkPermissions(ctx, inv); err != nil {
		return err
	}

	values, err := c.Parse(inv.Scope, argString)
	if err != nil {
		return &ParsingError{Cause: err, Usage: c.Usage(inv.Prefix)}
	}

	inv.Command = c
	inv.Args = values
	if c.Handler == nil {
		return nil
	}

	reply, err := c.Handler(ctx, inv)
	if err != nil {
		return err
	}
	return inv.Send(ctx, reply)
}

// Parse consumes argString against the schema and returns the values by name.
// Whatever is left after the last argument is ignored.
func (c *Command) Parse(scope args.Resolver, argString string) (args.Values, error) {
	values := make(args.Values, len(c.Args))
	rest := argString
	for _, spec := range c.Args {
		v, next, err := spec.Consume(scope, rest)
		if err != nil {
			return nil, err
		}
		values[spec.Name] = v
		rest = next
	}
	return values, nil
}

func (c *Command) checkPermissions(ctx context.Context, inv *Invocation) error {
	for _, p := range c.Permissions {
		if inv.Perms == nil {
			return &MissingPermissionsError{Permission: p}
		}
		ok, err := inv.Perms.HasPermission(ctx, inv.Actor.ID, inv.ChannelID, p)
		if err != nil {
			return fmt.Errorf("check permission %s for %s: %w", p, inv.Actor.ID, err)
		}
		if !ok {
			return &MissingPermissionsError{Permission: p}
		}
	}
	return nil
}
