package parser

// Pair is the output of a two-parser sequence.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the output of a three-parser sequence.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Quad is the output of a four-parser sequence.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// Maybe is the output of an optional parser.
type Maybe[O any] struct {
	Value   O
	Present bool
}

// Some returns a present [Maybe].
func Some[O any](v O) Maybe[O] { return Maybe[O]{Value: v, Present: true} }

// Or returns the value if present and def otherwise.
func (m Maybe[O]) Or(def O) O {
	if m.Present {
		return m.Value
	}

	return def
}

// Range is a half-open interval [Start, End) of stream offsets.
type Range struct {
	Start int
	End   int
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }
