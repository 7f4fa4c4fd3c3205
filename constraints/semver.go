package constraints

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/reglet-dev/constrain"
)

// Semver requires the value to parse as a semantic version.
func Semver() constrain.Constraint[string, Diagnostic] {
	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		if _, err := semver.NewVersion(value); err != nil {
			return invalid("semver", "value %q is not a semantic version: %v", value, err), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// SemverRange requires the value to parse as a semantic version satisfying
// the given range expression, for example ">= 1.2.0, < 2.0.0". The range is
// compiled once at construction.
func SemverRange(rangeExpr string) (constrain.Constraint[string, Diagnostic], error) {
	rng, err := semver.NewConstraint(rangeExpr)
	if err != nil {
		return constrain.Constraint[string, Diagnostic]{}, fmt.Errorf("parsing version range %q: %w", rangeExpr, err)
	}

	return constrain.New(func(_ context.Context, value string) (constrain.Result[Diagnostic], error) {
		version, err := semver.NewVersion(value)
		if err != nil {
			return invalid("semver_range", "value %q is not a semantic version: %v", value, err), nil
		}
		if !rng.Check(version) {
			return invalid("semver_range", "version %q does not satisfy %q", value, rangeExpr), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}), nil
}
