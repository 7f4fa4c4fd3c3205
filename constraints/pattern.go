package constraints

import (
	"context"
	"regexp"
	"sync"

	"github.com/reglet-dev/constrain"
	"github.com/reglet-dev/constrain/observable"
)

// Matches requires the value to match the given pattern. The pattern is
// compiled once at construction; an invalid pattern panics, mirroring
// regexp.MustCompile.
func Matches(pattern string) constrain.Constraint[string, Diagnostic] {
	re := regexp.MustCompile(pattern)
	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		if !re.MatchString(value) {
			return invalid("matches", "value %q must match pattern %q", value, pattern), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// NotMatches requires the value not to match the given pattern.
func NotMatches(pattern string) constrain.Constraint[string, Diagnostic] {
	re := regexp.MustCompile(pattern)
	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		if re.MatchString(value) {
			return invalid("not_matches", "value %q must not match pattern %q", value, pattern), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// patternCache compiles an observed pattern lazily and reuses the compiled
// form until the pattern text changes. Safe for concurrent use by async
// checks.
type patternCache struct {
	mu  sync.Mutex
	src string
	re  *regexp.Regexp
	err error
}

func (c *patternCache) get(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.re == nil && c.err == nil || c.src != pattern {
		c.src = pattern
		c.re, c.err = regexp.Compile(pattern)
	}
	return c.re, c.err
}

// MatchesObservable requires the value to match the current value of
// pattern. The constraint re-runs whenever the pattern changes; a pattern
// that fails to compile makes the value invalid.
func MatchesObservable(pattern observable.Readable[string]) constrain.Constraint[string, Diagnostic] {
	cache := &patternCache{}
	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		src := pattern.Get()
		re, err := cache.get(src)
		if err != nil {
			return invalid("matches", "invalid pattern %q: %v", src, err), nil
		}
		if !re.MatchString(value) {
			return invalid("matches", "value %q must match pattern %q", value, src), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}, pattern)
}

// NotMatchesObservable requires the value not to match the current value of
// pattern.
func NotMatchesObservable(pattern observable.Readable[string]) constrain.Constraint[string, Diagnostic] {
	cache := &patternCache{}
	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		src := pattern.Get()
		re, err := cache.get(src)
		if err != nil {
			return invalid("not_matches", "invalid pattern %q: %v", src, err), nil
		}
		if re.MatchString(value) {
			return invalid("not_matches", "value %q must not match pattern %q", value, src), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}, pattern)
}
