package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/reglet-dev/constrain"
	"github.com/reglet-dev/constrain/constraints"
)

// Document is the decoded-YAML shape profiles validate.
type Document = map[string]any

// Compile turns every rule of the profile into document constraints, one
// per constraint declaration. The resulting constraints extract the rule's
// field from the document and apply the declared check to it; diagnostics
// are prefixed with the field path.
func Compile(p *Profile) ([]constrain.Constraint[Document, constraints.Diagnostic], error) {
	var out []constrain.Constraint[Document, constraints.Diagnostic]
	for _, rule := range p.Rules {
		for _, decl := range rule.Constraints {
			c, err := compileDeclaration(rule, decl)
			if err != nil {
				return nil, err
			}
			if decl.Async {
				c = c.Async()
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// Guard creates a guarded document from a compiled profile. The document
// starts unvalidated and every constraint runs immediately.
func Guard(p *Profile, doc Document, opts constrain.ValueOptions[Document, constraints.Diagnostic]) (*constrain.Value[Document, constraints.Diagnostic], error) {
	compiled, err := Compile(p)
	if err != nil {
		return nil, err
	}
	opts.Constraints = append(compiled, opts.Constraints...)
	return constrain.NewValue(doc, constrain.StateUnknown, opts), nil
}

func compileDeclaration(rule Rule, decl Declaration) (constrain.Constraint[Document, constraints.Diagnostic], error) {
	switch decl.Type {
	case "not_empty":
		return forField(rule, stringCheck(constraints.NotEmpty())), nil

	case "not_blank":
		return forField(rule, stringCheck(constraints.NotBlank())), nil

	case "matches":
		if decl.Pattern == "" {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "pattern"}
		}
		if _, err := regexp.Compile(decl.Pattern); err != nil {
			return none(), &InvalidParameterError{Field: rule.Field, Type: decl.Type, Parameter: "pattern", Err: err}
		}
		return forField(rule, stringCheck(constraints.Matches(decl.Pattern))), nil

	case "not_matches":
		if decl.Pattern == "" {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "pattern"}
		}
		if _, err := regexp.Compile(decl.Pattern); err != nil {
			return none(), &InvalidParameterError{Field: rule.Field, Type: decl.Type, Parameter: "pattern", Err: err}
		}
		return forField(rule, stringCheck(constraints.NotMatches(decl.Pattern))), nil

	case "min":
		if decl.Min == nil {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "min"}
		}
		return forField(rule, numberCheck(constraints.GreaterThanOrEqualTo(*decl.Min))), nil

	case "max":
		if decl.Max == nil {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "max"}
		}
		return forField(rule, numberCheck(constraints.LessThanOrEqualTo(*decl.Max))), nil

	case "between":
		if decl.Min == nil {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "min"}
		}
		if decl.Max == nil {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "max"}
		}
		return forField(rule, numberCheck(constraints.Between(*decl.Min, *decl.Max))), nil

	case "expr":
		if decl.Expr == "" {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "expr"}
		}
		inner, err := constraints.Expr[any](decl.Expr)
		if err != nil {
			return none(), &InvalidParameterError{Field: rule.Field, Type: decl.Type, Parameter: "expr", Err: err}
		}
		return forField(rule, inner.Check), nil

	case "schema":
		if decl.Schema == "" {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "schema"}
		}
		inner, err := constraints.Schema(decl.Schema)
		if err != nil {
			return none(), &InvalidParameterError{Field: rule.Field, Type: decl.Type, Parameter: "schema", Err: err}
		}
		return forField(rule, inner.Check), nil

	case "semver":
		return forField(rule, stringCheck(constraints.Semver())), nil

	case "semver_range":
		if decl.Range == "" {
			return none(), &MissingParameterError{Field: rule.Field, Type: decl.Type, Parameter: "range"}
		}
		inner, err := constraints.SemverRange(decl.Range)
		if err != nil {
			return none(), &InvalidParameterError{Field: rule.Field, Type: decl.Type, Parameter: "range", Err: err}
		}
		return forField(rule, stringCheck(inner)), nil

	default:
		return none(), &UnknownConstraintError{Field: rule.Field, Type: decl.Type}
	}
}

func none() constrain.Constraint[Document, constraints.Diagnostic] {
	return constrain.Constraint[Document, constraints.Diagnostic]{}
}

type fieldCheck func(ctx context.Context, value any) (constrain.Result[constraints.Diagnostic], error)

// forField wraps a field-level check into a document constraint: the field
// is resolved by path, missing fields fail unless the rule is optional, and
// diagnostics are prefixed with the field path.
func forField(rule Rule, check fieldCheck) constrain.Constraint[Document, constraints.Diagnostic] {
	return constrain.New(func(ctx context.Context, doc Document) (constrain.Result[constraints.Diagnostic], error) {
		value, found := resolve(doc, rule.Field)
		if !found {
			if rule.Optional {
				return constrain.Valid[constraints.Diagnostic](), nil
			}
			return constrain.InvalidWithDiagnostic(constraints.Diagnostic{
				Code:    "missing_field",
				Message: fmt.Sprintf("field %q is missing", rule.Field),
			}), nil
		}

		res, err := check(ctx, value)
		if err != nil {
			return res, err
		}
		if diag, ok := res.Diagnostic(); ok && rule.Field != "" {
			diag.Message = fmt.Sprintf("field %q: %s", rule.Field, diag.Message)
			return constrain.NewResult(res.IsValid(), diag), nil
		}
		return res, nil
	})
}

// stringCheck adapts a string constraint to an untyped field value.
func stringCheck(c constrain.Constraint[string, constraints.Diagnostic]) fieldCheck {
	return func(ctx context.Context, value any) (constrain.Result[constraints.Diagnostic], error) {
		s, ok := value.(string)
		if !ok {
			return wrongType("string", value), nil
		}
		return c.Check(ctx, s)
	}
}

// numberCheck adapts a float64 constraint to an untyped field value,
// coercing the integer types YAML decoding produces.
func numberCheck(c constrain.Constraint[float64, constraints.Diagnostic]) fieldCheck {
	return func(ctx context.Context, value any) (constrain.Result[constraints.Diagnostic], error) {
		var n float64
		switch v := value.(type) {
		case float64:
			n = v
		case int:
			n = float64(v)
		case int64:
			n = float64(v)
		case uint64:
			n = float64(v)
		default:
			return wrongType("number", value), nil
		}
		return c.Check(ctx, n)
	}
}

func wrongType(want string, got any) constrain.Result[constraints.Diagnostic] {
	return constrain.InvalidWithDiagnostic(constraints.Diagnostic{
		Code:    "wrong_type",
		Message: fmt.Sprintf("expected %s, got %T", want, got),
	})
}

// resolve walks a dot-separated path into the document. An empty path
// selects the document itself.
func resolve(doc Document, path string) (any, bool) {
	if path == "" {
		return doc, true
	}

	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
