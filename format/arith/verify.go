package arith

import (
	"math"

	"github.com/expr-lang/expr"

	"github.com/ardnew/knit/pkg"
)

// Tolerance is the relative difference [Verify] accepts between results.
const Tolerance = 1e-9

// ErrMismatch is returned by [Verify] when the two evaluations disagree.
var ErrMismatch = pkg.MakeErrorf("evaluation mismatch")

// ErrReference is returned by [Verify] when the reference evaluator fails.
var ErrReference = pkg.MakeErrorf("reference evaluation failed")

// Verify evaluates e directly and through the expr-lang engine, using the
// parenthesized rendering of e as its source, and reports whether both
// agree. It returns the direct result.
func Verify(e Expr, env Env) (float64, error) {
	got, err := e.Eval(env)
	if err != nil {
		return 0, err
	}

	vars := make(map[string]any, len(env))
	for k, v := range env {
		vars[k] = v
	}

	program, err := expr.Compile(e.String(), expr.Env(vars), expr.AsFloat64())
	if err != nil {
		return got, ErrReference.Wrap(err)
	}

	out, err := expr.Run(program, vars)
	if err != nil {
		return got, ErrReference.Wrap(err)
	}

	want, ok := out.(float64)
	if !ok {
		return got, ErrReference.Wrapf("unexpected result type %T", out)
	}

	if !agree(got, want) {
		return got, ErrMismatch.Wrapf("%s: got %v, reference %v", e, got, want)
	}

	return got, nil
}

func agree(a, b float64) bool {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return math.IsNaN(a) && math.IsNaN(b)
	case math.IsInf(a, 0) || math.IsInf(b, 0):
		return a == b
	}

	return math.Abs(a-b) <= Tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
