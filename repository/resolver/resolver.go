// Package resolver routes page fetches to origins based on page id patterns.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gobwas/glob"
	slogcontext "github.com/veqryn/slog-context"

	"openportal.dev/openportal/repository"
)

// Rule assigns pages matching a glob pattern to one origin repository. Rules
// with higher priority win; among equal priorities the declaration order
// decides.
type Rule struct {
	// PagePattern is a glob matched against page ids, e.g. "admin/*" or
	// "dash-*".
	PagePattern string
	// Priority orders competing rules, higher first.
	Priority int
	// Repository serves all pages matched by the rule.
	Repository repository.PageRepository
}

type compiledRule struct {
	Rule
	matcher glob.Glob
}

// Router implements repository.PageRepository by delegating each fetch to the
// first rule matching the page id, falling back to a default repository when
// no rule matches.
type Router struct {
	rules    []compiledRule
	fallback repository.PageRepository
}

var _ repository.PageRepository = (*Router)(nil)

type RouterOption func(*Router)

// WithFallback sets the repository used for pages no rule matches.
func WithFallback(fallback repository.PageRepository) RouterOption {
	return func(r *Router) {
		r.fallback = fallback
	}
}

// NewRouter compiles the given rules. The rule list is immutable afterwards.
func NewRouter(rules []Rule, opts ...RouterOption) (*Router, error) {
	router := &Router{
		rules: make([]compiledRule, 0, len(rules)),
	}
	for _, opt := range opts {
		opt(router)
	}
	for index, rule := range rules {
		matcher, err := glob.Compile(rule.PagePattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile glob pattern %q in rule index %d: %w", rule.PagePattern, index, err)
		}
		router.rules = append(router.rules, compiledRule{Rule: rule, matcher: matcher})
	}
	sort.SliceStable(router.rules, func(i, j int) bool {
		return router.rules[i].Priority > router.rules[j].Priority
	})
	return router, nil
}

func (r *Router) GetPage(ctx context.Context, pageID string, opts ...repository.GetOption) (*repository.Page, error) {
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", "repository"))

	for _, rule := range r.rules {
		if rule.matcher.Match(pageID) {
			logger.Log(ctx, slog.LevelDebug, "matched resolver rule",
				slog.String("page", pageID),
				slog.String("pattern", rule.PagePattern),
				slog.Int("priority", rule.Priority),
			)
			return rule.Repository.GetPage(ctx, pageID, opts...)
		}
	}

	if r.fallback != nil {
		logger.Log(ctx, slog.LevelDebug, "no resolver rule matched, using fallback origin",
			slog.String("page", pageID),
		)
		return r.fallback.GetPage(ctx, pageID, opts...)
	}

	return nil, fmt.Errorf("%w: no origin configured for page %q", repository.ErrNotFound, pageID)
}
