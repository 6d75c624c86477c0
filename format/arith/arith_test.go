package arith

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
)

func TestEval(t *testing.T) {
	env := Env{"x": 3, "y": 5, "rate_2": 0.25}

	tests := []struct {
		src  string
		want float64
	}{
		{" 12 *2 /  3", 8},
		{" 1 + 2*3 + 4", 11},
		{"  2*2 / ( 5 - 1) + 3", 4},
		{" 2* (  3 + 4 ) ", 14},
		{"10 - 4 - 3", 3},
		{"2^3^2", 512},
		{"-2^2", -4},
		{"2^-1", 0.5},
		{"--3", 3},
		{"1.5e1 / 3", 5},
		{"x * (y - 1)", 12},
		{"rate_2 * 8", 2},
		{"((((7))))", 7},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Eval(tt.src, env)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1 + 2*3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"2^3^2", "(2 ^ (3 ^ 2))"},
		{"-x", "(-x)"},
		{"(a)", "a"},
		{"-2 * 3", "((-2) * 3)"},
		{"2 ^ 3 * 2", "((2 ^ 3) * 2)"},
		{"2 ^ -3 ^ 2", "(2 ^ (-(3 ^ 2)))"},
		{"a * -b", "(a * (-b))"},
	}

	for _, tt := range tests {
		e, err := Parse(tt.src)
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, e.String(), tt.src)
	}
}

func TestSpans(t *testing.T) {
	e, err := Parse("  abc + 42")
	require.NoError(t, err)

	b, ok := e.(Binary)
	require.True(t, ok)
	assert.Equal(t, Var{Name: "abc", Span: parser.Range{Start: 2, End: 5}}, b.X)
	assert.Equal(t, Num{Value: 42, Span: parser.Range{Start: 8, End: 10}}, b.Y)
}

func TestErrors(t *testing.T) {
	t.Run("missing operand", func(t *testing.T) {
		_, err := Parse("1 +")

		var e *outcome.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, outcome.KindCut, e.Kind)
		assert.Equal(t, 3, e.Offset)
		assert.Contains(t, e.Expected, "operand")
	})

	t.Run("unclosed group", func(t *testing.T) {
		_, err := Parse("(1 + 2")

		var e *outcome.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, outcome.KindCut, e.Kind)
		assert.Equal(t, 6, e.Offset)
		assert.Contains(t, e.Expected, `')'`)
		assert.Equal(t, []string{"group"}, e.Labels())
	})

	t.Run("trailing", func(t *testing.T) {
		_, err := Parse("2 3")
		assert.ErrorIs(t, err, outcome.ErrTrailingData)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Parse("   ")
		assert.True(t, outcome.IsBacktrack(err), "got %v", err)
	})

	t.Run("explicit sign", func(t *testing.T) {
		_, err := Parse("+1")
		assert.Error(t, err)
	})

	t.Run("undefined", func(t *testing.T) {
		_, err := Eval("1 + yy", nil)
		require.ErrorIs(t, err, ErrUndefined)
		assert.Contains(t, err.Error(), `"yy" at offset 4`)
	})
}

type skewed struct{ Expr }

func (s skewed) Eval(env Env) (float64, error) {
	v, err := s.Expr.Eval(env)

	return v + 1, err
}

func TestVerify(t *testing.T) {
	env := Env{"x": 3, "y": -0.5}

	for _, src := range []string{
		"1 + 2 * 3",
		"x ^ 2 - y",
		"-(x - 10) / 4",
		"2 ^ -x",
		"x * y * 1e3",
	} {
		t.Run(src, func(t *testing.T) {
			e, err := Parse(src)
			require.NoError(t, err)

			want, err := e.Eval(env)
			require.NoError(t, err)

			got, err := Verify(e, env)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("mismatch", func(t *testing.T) {
		e, err := Parse("x + 1")
		require.NoError(t, err)

		_, err = Verify(skewed{e}, env)
		assert.ErrorIs(t, err, ErrMismatch)
	})

	t.Run("undefined", func(t *testing.T) {
		e, err := Parse("z")
		require.NoError(t, err)

		_, err = Verify(e, env)
		assert.ErrorIs(t, err, ErrUndefined)
	})
}

func BenchmarkParse(b *testing.B) {
	src := "(1 + 2) * 3 - 4 / (5 ^ 2) + x * (y - (z + 1)) * 0.5"

	b.SetBytes(int64(len(src)))

	for b.Loop() {
		if _, err := Parse(src); err != nil {
			b.Fatal(err)
		}
	}
}
