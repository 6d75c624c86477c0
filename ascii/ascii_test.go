package ascii_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/ardnew/knit/ascii"
	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
)

func asError(t *testing.T, err error) *outcome.Error {
	t.Helper()

	var e *outcome.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *outcome.Error, got %T (%v)", err, err)
	}

	return e
}

func TestClasses(t *testing.T) {
	tests := []struct {
		name string
		p    parser.Parser[rune, string, string]
		src  string
		want string
		rest string
	}{
		{"digit0 empty", ascii.Digit0[rune, string](), "abc", "", "abc"},
		{"digit1", ascii.Digit1[rune, string](), "123abc", "123", "abc"},
		{"hex", ascii.HexDigit1[rune, string](), "0fFz", "0fF", "z"},
		{"alpha", ascii.Alpha1[rune, string](), "abC1", "abC", "1"},
		{"alphanumeric", ascii.Alphanumeric1[rune, string](), "a1B2-", "a1B2", "-"},
		{"space stops at newline", ascii.Space0[rune, string](), " \t\nx", " \t", "\nx"},
		{"multispace", ascii.Multispace1[rune, string](), " \r\n\tx", " \r\n\t", "x"},
		{"non-ascii letter", ascii.Alpha0[rune, string](), "éa", "", "éa"},
		{"line ending crlf", ascii.LineEnding[rune, string](), "\r\nx", "\r\n", "x"},
		{"not line ending", ascii.NotLineEnding[rune, string](), "ab c\r\n", "ab c", "\r\n"},
		{"not line ending to end", ascii.NotLineEnding[rune, string](), "abc", "abc", ""},
		{"tag", ascii.Tag[rune, string]("HTTP/"), "HTTP/1.1", "HTTP/", "1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := stream.NewText(tt.src)

			got, err := parser.ParsePrefix(tt.p, in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}

			if rest := in.Remaining(); rest != tt.rest {
				t.Errorf("expected remaining %q, got %q", tt.rest, rest)
			}
		})
	}
}

func TestClassExpected(t *testing.T) {
	_, err := parser.ParsePrefix(ascii.Digit1[byte, []byte](), stream.NewBytes([]byte("x1")))

	e := asError(t, err)
	if e.Kind != outcome.KindBacktrack || e.Offset != 0 {
		t.Errorf("expected backtrack at 0, got %s at %d", e.Kind, e.Offset)
	}

	if len(e.Expected) != 1 || e.Expected[0] != "digit" {
		t.Errorf("expected [digit], got %v", e.Expected)
	}
}

func TestChar(t *testing.T) {
	p := ascii.Char[rune, string]('λ')

	got, err := parser.ParsePrefix(p, stream.NewText("λx"))
	if err != nil || got != 'λ' {
		t.Fatalf("expected 'λ', got %q (%v)", got, err)
	}

	_, err = parser.ParsePrefix(p, stream.NewText("x"))

	e := asError(t, err)
	if len(e.Expected) != 1 || e.Expected[0] != `'λ'` {
		t.Errorf("expected ['λ'], got %v", e.Expected)
	}
}

func TestLexemeTrim(t *testing.T) {
	in := stream.NewText("  42 \n x")

	got, err := parser.ParsePrefix(ascii.Trim(ascii.Digit1[rune, string]()), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "42" || in.Remaining() != "x" {
		t.Errorf("expected 42 with remaining x, got %q with %q", got, in.Remaining())
	}

	in = stream.NewText("a  b")

	got, err = parser.ParsePrefix(ascii.Lexeme(ascii.Alpha1[rune, string]()), in)
	if err != nil || got != "a" || in.Remaining() != "b" {
		t.Errorf("expected a with remaining b, got %q with %q (%v)", got, in.Remaining(), err)
	}
}

func TestNumbers(t *testing.T) {
	t.Run("DecUint", func(t *testing.T) {
		got, err := parser.Parse(ascii.DecUint[byte, []byte](), stream.NewBytes([]byte("18446744073709551615")))
		if err != nil || got != 18446744073709551615 {
			t.Errorf("expected max uint64, got %d (%v)", got, err)
		}

		_, err = parser.Parse(ascii.DecUint[byte, []byte](), stream.NewBytes([]byte("18446744073709551616")))

		var numErr *strconv.NumError
		if !errors.As(err, &numErr) {
			t.Errorf("expected *strconv.NumError cause, got %v", err)
		}

		if !outcome.IsBacktrack(err) {
			t.Errorf("expected backtrack, got %v", err)
		}
	})

	t.Run("DecInt", func(t *testing.T) {
		for src, want := range map[string]int64{"0": 0, "-17": -17, "+8": 8} {
			got, err := parser.Parse(ascii.DecInt[rune, string](), stream.NewText(src))
			if err != nil || got != want {
				t.Errorf("%q: expected %d, got %d (%v)", src, want, got, err)
			}
		}
	})

	t.Run("HexUint", func(t *testing.T) {
		got, err := parser.Parse(ascii.HexUint[rune, string](), stream.NewText("DeadBeef"))
		if err != nil || got != 0xdeadbeef {
			t.Errorf("expected 0xdeadbeef, got %#x (%v)", got, err)
		}
	})

	t.Run("Float", func(t *testing.T) {
		tests := []struct {
			src  string
			want float64
			rest string
		}{
			{"3", 3, ""},
			{"-2.5", -2.5, ""},
			{"1.", 1, ""},
			{"6.02e23", 6.02e23, ""},
			{"1E-3x", 0.001, "x"},
			{"1e", 1, "e"},
			{"1e+", 1, "e+"},
			{"7.5.", 7.5, "."},
		}

		for _, tt := range tests {
			in := stream.NewText(tt.src)

			got, err := parser.ParsePrefix(ascii.Float[rune, string](), in)
			if err != nil {
				t.Errorf("%q: unexpected error: %v", tt.src, err)

				continue
			}

			if got != tt.want || in.Remaining() != tt.rest {
				t.Errorf("%q: expected %v with remaining %q, got %v with %q",
					tt.src, tt.want, tt.rest, got, in.Remaining())
			}
		}

		_, err := parser.ParsePrefix(ascii.Float[rune, string](), stream.NewText(".5"))

		e := asError(t, err)
		if len(e.Expected) != 1 || e.Expected[0] != "number" {
			t.Errorf("expected [number], got %v", e.Expected)
		}
	})

	t.Run("partial", func(t *testing.T) {
		in := stream.NewPartialText("12.5")

		_, err := parser.ParsePartial(ascii.Float[rune, string](), in)
		if !outcome.IsIncomplete(err) {
			t.Fatalf("expected incomplete, got %v", err)
		}

		if in.Offset() != 0 {
			t.Errorf("expected no input consumed, got offset %d", in.Offset())
		}

		in.Append("5 ")

		got, err := parser.ParsePartial(ascii.Float[rune, string](), in)
		if err != nil || got != 12.55 {
			t.Errorf("expected 12.55, got %v (%v)", got, err)
		}
	})
}

func TestPredicates(t *testing.T) {
	for _, c := range []byte("09") {
		if !ascii.IsDigit(c) || !ascii.IsHexDigit(c) || !ascii.IsAlphanumeric(c) {
			t.Errorf("expected %q to be a digit", c)
		}
	}

	for _, c := range []rune("aFz") {
		if !ascii.IsAlpha(c) || ascii.IsDigit(c) {
			t.Errorf("expected %q to be a letter", c)
		}
	}

	if ascii.IsHexDigit('g') || ascii.IsAlpha('é') || ascii.IsSpace('\n') || !ascii.IsMultispace('\r') {
		t.Error("unexpected classification")
	}
}
