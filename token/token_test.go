package token_test

import (
	"errors"
	"testing"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
	"github.com/ardnew/knit/token"
)

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func asError(t *testing.T, err error) *outcome.Error {
	t.Helper()

	var e *outcome.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *outcome.Error, got %T (%v)", err, err)
	}

	return e
}

func TestSlices(t *testing.T) {
	tests := []struct {
		name string
		p    parser.Parser[byte, []byte, []byte]
		src  string
		want string
		rest string
	}{
		{"literal", token.Literal[byte]([]byte("GET")), "GET /", "GET", " /"},
		{"take", token.Take[byte, []byte](2), "abc", "ab", "c"},
		{"take zero", token.Take[byte, []byte](0), "abc", "", "abc"},
		{"take while", token.TakeWhile[byte, []byte](isDigit), "12a", "12", "a"},
		{"take while empty", token.TakeWhile[byte, []byte](isDigit), "a", "", "a"},
		{"take while all", token.TakeWhile[byte, []byte](isDigit), "123", "123", ""},
		{"take while mn", token.TakeWhileMN[byte, []byte](1, 2, isDigit), "123", "12", "3"},
		{"take till", token.TakeTill[byte, []byte](isDigit), "ab1", "ab", "1"},
		{"take till1", token.TakeTill1[byte, []byte](isDigit), "ab1", "ab", "1"},
		{"take until", token.TakeUntil[byte]([]byte("\r\n")), "a\rb\r\nc", "a\rb", "\r\nc"},
		{"rest", token.Rest[byte, []byte](), "xyz", "xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := stream.NewBytes([]byte(tt.src))

			got, err := parser.ParsePrefix(tt.p, in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if string(got) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}

			if rest := string(in.Remaining()); rest != tt.rest {
				t.Errorf("expected remaining %q, got %q", tt.rest, rest)
			}
		})
	}
}

func TestZeroCopy(t *testing.T) {
	src := []byte("abc123")

	got, err := parser.ParsePrefix(token.TakeWhile1[byte, []byte](func(c byte) bool { return c >= 'a' }), stream.NewBytes(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if &got[0] != &src[0] {
		t.Error("expected output to alias the input buffer")
	}
}

func TestTokens(t *testing.T) {
	in := stream.NewText("héllo")

	c, err := parser.ParsePrefix(token.Any[rune, string](), in)
	if err != nil || c != 'h' {
		t.Fatalf("expected 'h', got %q (%v)", c, err)
	}

	c, err = parser.ParsePrefix(token.OneOf[rune, string]('é', 'e'), in)
	if err != nil || c != 'é' {
		t.Fatalf("expected 'é', got %q (%v)", c, err)
	}

	c, err = parser.ParsePrefix(token.NoneOf[rune, string]('x'), in)
	if err != nil || c != 'l' {
		t.Fatalf("expected 'l', got %q (%v)", c, err)
	}

	_, err = parser.ParsePrefix(token.OneOf[rune, string]('+', '-'), in)

	e := asError(t, err)
	if e.Kind != outcome.KindBacktrack || e.Offset != 4 {
		t.Errorf("expected backtrack at 4, got %s at %d", e.Kind, e.Offset)
	}

	if len(e.Expected) != 1 || e.Expected[0] != `one of "+-"` {
		t.Errorf(`expected [one of "+-"], got %v`, e.Expected)
	}

	if in.Offset() != 4 {
		t.Errorf("expected failed match to consume nothing, got offset %d", in.Offset())
	}
}

func TestMismatch(t *testing.T) {
	tests := []struct {
		name     string
		p        parser.Parser[byte, []byte, []byte]
		src      string
		offset   int
		expected []string
		eof      bool
	}{
		{"literal", token.Literal[byte]([]byte("POST")), "PUT", 0, []string{`"POST"`}, false},
		{"take while1", token.TakeWhile1[byte, []byte](isDigit), "x", 0, nil, false},
		{"take while1 at end", token.TakeWhile1[byte, []byte](isDigit), "", 0, nil, true},
		{"take while mn short", token.TakeWhileMN[byte, []byte](3, 4, isDigit), "12x", 2, nil, false},
		{"take until missing", token.TakeUntil[byte]([]byte("--")), "a-b", 0, []string{`"--"`}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := stream.NewBytes([]byte(tt.src))

			_, err := parser.ParsePrefix(tt.p, in)

			e := asError(t, err)
			if e.Kind != outcome.KindBacktrack {
				t.Errorf("expected backtrack, got %s", e.Kind)
			}

			if e.Offset != tt.offset {
				t.Errorf("expected offset %d, got %d", tt.offset, e.Offset)
			}

			if len(e.Expected) != len(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, e.Expected)
			}

			if got := errors.Is(err, outcome.ErrUnexpectedEOF); got != tt.eof {
				t.Errorf("expected unexpected EOF %t, got %t", tt.eof, got)
			}

			if in.Offset() != 0 {
				t.Errorf("expected no input consumed, got offset %d", in.Offset())
			}
		})
	}
}

func TestPartial(t *testing.T) {
	tests := []struct {
		name   string
		p      parser.Parser[byte, []byte, []byte]
		src    string
		needed outcome.Needed
	}{
		{"literal prefix", token.Literal[byte]([]byte("HTTP/")), "HT", outcome.Size(3)},
		{"take", token.Take[byte, []byte](4), "ab", outcome.Size(2)},
		{"take while to end", token.TakeWhile[byte, []byte](isDigit), "12", outcome.Unknown},
		{"take until", token.TakeUntil[byte]([]byte("\n")), "abc", outcome.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := stream.NewPartialBytes([]byte(tt.src))

			_, err := parser.ParsePartial(tt.p, in)

			e := asError(t, err)
			if e.Kind != outcome.KindIncomplete {
				t.Fatalf("expected incomplete, got %s", e.Kind)
			}

			if e.Needed != tt.needed {
				t.Errorf("expected needed %d, got %d", tt.needed, e.Needed)
			}
		})
	}

	t.Run("bounded run completes", func(t *testing.T) {
		got, err := parser.ParsePartial(token.TakeWhileMN[byte, []byte](0, 2, isDigit), stream.NewPartialBytes([]byte("12")))
		if err != nil || string(got) != "12" {
			t.Errorf("expected 12, got %q (%v)", got, err)
		}
	})

	t.Run("literal mismatch", func(t *testing.T) {
		_, err := parser.ParsePartial(token.Literal[byte]([]byte("GET")), stream.NewPartialBytes([]byte("GX")))
		if !outcome.IsBacktrack(err) {
			t.Errorf("expected backtrack, got %v", err)
		}
	})
}

func TestTakeWhileMNBounds(t *testing.T) {
	defer func() {
		var inv *outcome.InvariantError
		if r := recover(); r == nil {
			t.Error("expected panic")
		} else if err, ok := r.(error); !ok || !errors.As(err, &inv) {
			t.Errorf("expected *outcome.InvariantError, got %v", r)
		}
	}()

	token.TakeWhileMN[byte, []byte](3, 2, isDigit)
}
