package widget

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate decides whether a widget is visible for the given data.
type Predicate func(data Data, w Widget, m Manager) (bool, error)

// WhenField is visible when data[name] is truthy.
func WhenField(name string) Predicate {
	return func(data Data, _ Widget, _ Manager) (bool, error) {
		return Truthy(data[name]), nil
	}
}

// WhenExpr compiles src once and panics on syntax errors, like regexp.MustCompile.
func WhenExpr(src string) Predicate {
	p, err := Expr(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Expr compiles a declarative condition evaluated against the data mapping,
// e.g. `count > 3 && name != ""`. Non-boolean results are tested for truthiness.
func Expr(src string) (Predicate, error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", src, err)
	}
	return exprPredicate(src, program), nil
}

func exprPredicate(src string, program *vm.Program) Predicate {
	return func(data Data, _ Widget, _ Manager) (bool, error) {
		env := map[string]any(data)
		if env == nil {
			env = map[string]any{}
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return false, fmt.Errorf("evaluate condition %q: %w", src, err)
		}
		if b, ok := out.(bool); ok {
			return b, nil
		}
		return Truthy(out), nil
	}
}

// WhenFunc wraps a custom predicate.
func WhenFunc(fn func(data Data, w Widget, m Manager) (bool, error)) Predicate {
	return Predicate(fn)
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(data Data, w Widget, m Manager) (bool, error) {
		ok, err := p(data, w, m)
		return !ok, err
	}
}

// All is visible when every predicate holds.
func All(ps ...Predicate) Predicate {
	return func(data Data, w Widget, m Manager) (bool, error) {
		for _, p := range ps {
			ok, err := p(data, w, m)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Any is visible when at least one predicate holds.
func Any(ps ...Predicate) Predicate {
	return func(data Data, w Widget, m Manager) (bool, error) {
		for _, p := range ps {
			ok, err := p(data, w, m)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Truthy reports whether v counts as true: nil, false, zero numbers and empty
// strings, slices and maps are false.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// visible evaluates an optional predicate for w.
func visible(when Predicate, data Data, w Widget, m Manager) (bool, error) {
	if when == nil {
		return true, nil
	}
	return when(data, w, m)
}
