package constraints

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/constrain"
)

// Expr requires the given boolean expression to evaluate to true for the
// guarded value. The value is available in the expression environment as
// "value". The expression is compiled once at construction.
//
//	c, err := constraints.Expr[int]("value >= 0 && value < 100")
func Expr[T any](source string) (constrain.Constraint[T, Diagnostic], error) {
	// An interface zero value is nil and gives the checker no type for
	// "value"; compile against an untyped environment in that case.
	var zero T
	opts := []expr.Option{expr.AsBool()}
	if any(zero) != nil {
		opts = append(opts, expr.Env(exprEnv(zero)))
	}
	program, err := expr.Compile(source, opts...)
	if err != nil {
		return constrain.Constraint[T, Diagnostic]{}, fmt.Errorf("compiling expression %q: %w", source, err)
	}
	return exprConstraint[T](program, source), nil
}

// MustExpr is Expr but panics on a compilation error, for static
// expressions known at build time.
func MustExpr[T any](source string) constrain.Constraint[T, Diagnostic] {
	c, err := Expr[T](source)
	if err != nil {
		panic(err)
	}
	return c
}

func exprConstraint[T any](program *vm.Program, source string) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		output, err := expr.Run(program, exprEnv(value))
		if err != nil {
			return constrain.Result[Diagnostic]{}, fmt.Errorf("evaluating expression %q: %w", source, err)
		}
		ok, isBool := output.(bool)
		if !isBool {
			return constrain.Result[Diagnostic]{}, fmt.Errorf("expression %q returned %T, want bool", source, output)
		}
		if !ok {
			return invalid("expr", "value %v does not satisfy %q", value, source), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

func exprEnv[T any](value T) map[string]any {
	return map[string]any{"value": value}
}
