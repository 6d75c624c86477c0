package ini

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/knit/outcome"
	"github.com/ardnew/knit/parser"
	"github.com/ardnew/knit/stream"
)

const sample = `; knit configuration
name = knit

[abcd]

parameter=value;abc

key = value2

[category]
parameter3=value3
key4 = "quoted ; value"   # comment
empty =
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Sections, 3)

	assert.Nil(t, f.Sections[0].Name)
	assert.Equal(t, 21, f.Sections[0].Offset)
	assert.Equal(t, "abcd", string(f.Sections[1].Name))
	assert.Equal(t, "category", string(f.Sections[2].Name))

	assert.Equal(t, map[string]string{
		"name":                "knit",
		"abcd.parameter":      "value",
		"abcd.key":            "value2",
		"category.parameter3": "value3",
		"category.key4":       "quoted ; value",
		"category.empty":      "",
	}, f.Flatten())
}

func TestLookup(t *testing.T) {
	f, err := Parse([]byte("a = 1\n[s]\nk = x\n[s]\nk = y\nk = z\n"))
	require.NoError(t, err)

	v, ok := f.Lookup("s", "k")
	assert.True(t, ok)
	assert.Equal(t, "z", string(v))

	v, ok = f.Lookup("", "a")
	assert.True(t, ok)
	assert.Equal(t, "1", string(v))

	_, ok = f.Lookup("s", "a")
	assert.False(t, ok)
}

func TestZeroCopy(t *testing.T) {
	src := []byte("[s]\nkey = value\n")

	f, err := Parse(src)
	require.NoError(t, err)

	e := f.Sections[0].Entries[0]
	assert.Same(t, &src[4], &e.Key[0])
	assert.Same(t, &src[10], &e.Value[0])
	assert.Equal(t, 4, e.Offset)
}

func TestKeyValue(t *testing.T) {
	tests := []struct {
		src, key, value string
	}{
		{"parameter=value\nkey = value2", "parameter", "value"},
		{"parameter = value\n", "parameter", "value"},
		{"parameter=value;abc\n", "parameter", "value"},
		{"log.level\t=\tdebug", "log.level", "debug"},
		{"crlf = yes\r\n", "crlf", "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e, err := parser.ParsePrefix(KeyValue(), stream.NewBytes([]byte(tt.src)))
			require.NoError(t, err)
			assert.Equal(t, tt.key, string(e.Key))
			assert.Equal(t, tt.value, string(e.Value))
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		kind     outcome.Kind
		offset   int
		expected []string
		labels   []string
	}{
		{"missing equals", "[a]\nkey value\n", outcome.KindCut, 8, []string{`'='`}, []string{"entry", "section"}},
		{"unclosed header", "[a\nk=v\n", outcome.KindCut, 2, []string{`']'`}, []string{"section"}},
		{"empty header", "[]\n", outcome.KindCut, 1, []string{"section name"}, []string{"section"}},
		{"unclosed quote", "k = \"abc\n", outcome.KindCut, 8, []string{`'"'`}, []string{"entry"}},
		{"stray text", "k = v\n=oops\n", outcome.KindBacktrack, 6, []string{"section or entry"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))

			var e *outcome.Error
			require.True(t, errors.As(err, &e), "got %v", err)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.offset, e.Offset)
			assert.Equal(t, tt.expected, e.Expected)

			if tt.labels != nil {
				assert.Equal(t, tt.labels, e.Labels())
			}
		})
	}
}
