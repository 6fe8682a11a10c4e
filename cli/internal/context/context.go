// Package context carries the objects assembled during command setup to the
// subcommands, through the cobra command context.
package context

import (
	"context"
	"sync"

	genericv1 "openportal.dev/openportal/configuration/v1"
)

type key struct{}

// Context holds per-invocation state shared between the root command setup
// and the subcommands.
type Context struct {
	mu            sync.RWMutex
	configuration *genericv1.Config
}

// FromContext returns the portal context, or nil when none is installed.
// Accessors are nil-safe, so callers may chain without checking.
func FromContext(ctx context.Context) *Context {
	if pctx, ok := ctx.Value(key{}).(*Context); ok {
		return pctx
	}
	return nil
}

// WithConfiguration installs the central configuration, creating the portal
// context if the given context has none.
func WithConfiguration(ctx context.Context, cfg *genericv1.Config) context.Context {
	pctx := FromContext(ctx)
	if pctx == nil {
		pctx = &Context{}
		ctx = context.WithValue(ctx, key{}, pctx)
	}
	pctx.mu.Lock()
	defer pctx.mu.Unlock()
	pctx.configuration = cfg
	return ctx
}

// Configuration returns the central configuration, or nil when not set.
func (c *Context) Configuration() *genericv1.Config {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configuration
}
