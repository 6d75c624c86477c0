package binary

import (
	"errors"
	"testing"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
)

func TestFixedWidth(t *testing.T) {
	input := []byte{0x12, 0x34, 0x56, 0x78}

	tests := []struct {
		name string
		run  func() (uint64, error)
		want uint64
	}{
		{"u8", func() (uint64, error) { v, err := parser.ParsePrefix(U8(), stream.NewBytes(input)); return uint64(v), err }, 0x12},
		{"be16", func() (uint64, error) { v, err := parser.ParsePrefix(BEU16(), stream.NewBytes(input)); return uint64(v), err }, 0x1234},
		{"le16", func() (uint64, error) { v, err := parser.ParsePrefix(LEU16(), stream.NewBytes(input)); return uint64(v), err }, 0x3412},
		{"be32", func() (uint64, error) { v, err := parser.ParseBytes(BEU32(), input); return uint64(v), err }, 0x12345678},
		{"le32", func() (uint64, error) { v, err := parser.ParseBytes(LEU32(), input); return uint64(v), err }, 0x78563412},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %#x, got %#x", tt.want, got)
			}
		})
	}
}

func TestSigned(t *testing.T) {
	got, err := parser.ParseBytes(BEI16(), []byte{0xff, 0xfe})
	if err != nil || got != -2 {
		t.Errorf("expected -2, got %d (%v)", got, err)
	}
}

func TestFixedWidth_Partial(t *testing.T) {
	in := stream.NewPartialBytes([]byte{0x00})

	_, err := parser.ParsePartial(BEU32(), in)

	var e *outcome.Error
	if !errors.As(err, &e) || e.Kind != outcome.KindIncomplete {
		t.Fatalf("expected incomplete, got %v", err)
	}

	if e.Needed != outcome.Size(3) {
		t.Errorf("expected 3 more bytes, got %v", e.Needed)
	}
}

func TestLengthTake(t *testing.T) {
	buf := []byte{3, 'a', 'b', 'c', 'd'}
	in := stream.NewBytes(buf)

	got, err := parser.ParsePrefix(LengthTake(U8()), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(got) != "abc" || &got[0] != &buf[1] {
		t.Errorf("expected aliased %q, got %q", "abc", got)
	}

	if in.Len() != 1 {
		t.Errorf("expected 1 byte remaining, got %d", in.Len())
	}
}

func TestLengthRepeat(t *testing.T) {
	got, err := parser.ParseBytes(LengthRepeat(U8(), BEU16()), []byte{2, 0, 1, 0, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestLength_Overflow(t *testing.T) {
	huge := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 'a'}

	tests := []struct {
		name string
		run  func(stream.Stream[byte, []byte]) error
	}{
		{"take", func(in stream.Stream[byte, []byte]) error {
			_, err := LengthTake(BEU64()).ParseNext(in)
			return err
		}},
		{"repeat", func(in stream.Stream[byte, []byte]) error {
			_, err := LengthRepeat(BEU64(), U8()).ParseNext(in)
			return err
		}},
		{"value", func(in stream.Stream[byte, []byte]) error {
			_, err := LengthValue(BEU64(), U8()).ParseNext(in)
			return err
		}},
	}

	for _, tt := range tests {
		for _, partial := range []bool{false, true} {
			name, in := tt.name, stream.NewBytes(huge)
			if partial {
				name, in = tt.name+"_partial", stream.NewPartialBytes(huge)
			}

			t.Run(name, func(t *testing.T) {
				err := tt.run(in)

				var e *outcome.Error
				if !errors.As(err, &e) || e.Kind != outcome.KindBacktrack {
					t.Fatalf("expected backtrack (partial=%v), got %v", partial, err)
				}

				if !errors.Is(err, ErrLength) {
					t.Errorf("expected ErrLength cause, got %v", err)
				}

				if e.Offset != 0 {
					t.Errorf("expected offset of the prefix, got %d", e.Offset)
				}
			})
		}
	}
}

func TestLengthTake_Short(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 5, 'a'}

	_, err := parser.ParseBytes(LengthTake(BEU64()), buf)

	var e *outcome.Error
	if !errors.As(err, &e) || e.Kind != outcome.KindBacktrack {
		t.Fatalf("expected backtrack, got %v", err)
	}

	_, err = parser.ParsePartial(LengthTake(BEU64()), stream.NewPartialBytes(buf))
	if !errors.As(err, &e) || e.Kind != outcome.KindIncomplete {
		t.Fatalf("expected incomplete, got %v", err)
	}

	if e.Needed != outcome.Size(4) {
		t.Errorf("expected 4 more bytes, got %v", e.Needed)
	}
}

func TestLengthValue_ErrorOffset(t *testing.T) {
	_, err := parser.ParseBytes(LengthValue(U8(), parser.AllConsuming(U8())), []byte{2, 7, 9})

	e := outcome.From(err, -1)
	if e == nil || !errors.Is(err, outcome.ErrTrailingData) {
		t.Fatalf("expected trailing data, got %v", err)
	}

	if e.Offset != 2 {
		t.Errorf("expected offset 2 in the outer stream, got %d", e.Offset)
	}
}

func TestBits(t *testing.T) {
	type header struct {
		version uint64
		flag    bool
		length  uint64
	}

	p := Bits(parser.Map(
		parser.Seq3(TakeBits(3), Bit(), TakeBits(6)),
		func(v parser.Triple[uint64, bool, uint64]) header {
			return header{version: v.First, flag: v.Second, length: v.Third}
		},
	))

	in := stream.NewBytes([]byte{0b1011_0000, 0b1100_0000, 0xAA})

	got, err := parser.ParsePrefix(p, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := header{version: 5, flag: true, length: 0b000011}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if in.Offset() != 2 {
		t.Errorf("expected byte offset 2, got %d", in.Offset())
	}
}

func TestBits_Errors(t *testing.T) {
	tag := Bits(parser.Preceded(TakeBits(9), BitTag(0b11, 2)))

	_, err := parser.ParsePrefix(tag, stream.NewBytes([]byte{0x00, 0x00}))
	if e := outcome.From(err, -1); e == nil || e.Offset != 1 {
		t.Errorf("expected failure in byte 1, got %v", err)
	}

	_, err = parser.ParsePartial(Bits(TakeBits(12)), stream.NewPartialBytes([]byte{0xff}))

	var e *outcome.Error
	if !errors.As(err, &e) || e.Kind != outcome.KindIncomplete || e.Needed != outcome.Size(1) {
		t.Errorf("expected incomplete needing 1 byte, got %v", err)
	}
}
