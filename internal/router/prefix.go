package router

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultPrefix is used when no prefix is configured for a guild.
const DefaultPrefix = "!"

// PrefixFunc returns the command prefix for a guild. An empty result means
// the default prefix.
type PrefixFunc func(guildID string) string

// Prefixes is an in-memory prefix table with per-guild overrides. Overrides
// live only as long as the process.
type Prefixes struct {
	mu       sync.RWMutex
	fallback string
	guilds   map[string]string
}

// NewPrefixes creates a table. An empty fallback means DefaultPrefix.
func NewPrefixes(fallback string, guilds map[string]string) *Prefixes {
	if fallback == "" {
		fallback = DefaultPrefix
	}
	p := &Prefixes{fallback: fallback, guilds: make(map[string]string, len(guilds))}
	for id, prefix := range guilds {
		if prefix != "" {
			p.guilds[id] = prefix
		}
	}
	return p
}

// Get returns the prefix for guildID.
func (p *Prefixes) Get(guildID string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if prefix, ok := p.guilds[guildID]; ok {
		return prefix
	}
	return p.fallback
}

// Set overrides the prefix for guildID. An empty prefix resets it.
func (p *Prefixes) Set(guildID, prefix string) error {
	if strings.ContainsAny(prefix, " \n\t") {
		return fmt.Errorf("prefix %q must not contain whitespace", prefix)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if prefix == "" {
		delete(p.guilds, guildID)
		return nil
	}
	p.guilds[guildID] = prefix
	return nil
}

// Func adapts the table to a PrefixFunc.
func (p *Prefixes) Func() PrefixFunc { return p.Get }
