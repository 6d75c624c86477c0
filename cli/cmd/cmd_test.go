package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/knit/pkg"
)

// writeFiles creates the named files under a temporary directory and
// returns the directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

// console returns a context with captured streams reading stdin.
// chanWriter reports each write on a channel.
type chanWriter struct{ writes chan string }

func (w *chanWriter) Write(p []byte) (int, error) {
	w.writes <- string(p)

	return len(p), nil
}

// failWriter rejects every write.
type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) { return 0, w.err }

func console(stdin string) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	var out, errs bytes.Buffer

	ctx := WithConsole(context.Background(), Console{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errs,
	})

	return ctx, &out, &errs
}

func TestCollect(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.json":     "1",
		"sub/b.json": "2",
		"sub/c.ini":  "x = 1",
	})

	link := filepath.Join(dir, "link.json")
	require.NoError(t, os.Symlink(filepath.Join(dir, "a.json"), link))

	t.Run("dedupe", func(t *testing.T) {
		inputs, err := collect(context.Background(),
			[]string{filepath.Join(dir, "a.json"), "-", link, "-"},
			[]string{filepath.Join(dir, "**", "*.json")},
		)
		require.NoError(t, err)

		var got []string
		for _, in := range inputs {
			got = append(got, in.Name())
		}

		assert.Equal(t, []string{
			filepath.Join(dir, "a.json"),
			"<stdin>",
			filepath.Join(dir, "sub", "b.json"),
		}, got)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := collect(context.Background(), []string{filepath.Join(dir, "nope.json")}, nil)
		assert.ErrorIs(t, err, ErrReadInput)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := collect(context.Background(), nil, []string{filepath.Join(dir, "[")})
		assert.ErrorIs(t, err, ErrBadPattern)
	})
}

func TestParse(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"one.json":  `{"b": [1, true], "a": null}`,
		"two.ini":   "[log]\nlevel = debug\n",
		"calc.expr": "2 ^ 3 ^ 2",
	})

	t.Run("detect", func(t *testing.T) {
		ctx, out, _ := console("")

		cmd := Parse{Output: OutputJSON, Sources: []string{
			filepath.Join(dir, "one.json"),
			filepath.Join(dir, "two.ini"),
			filepath.Join(dir, "calc.expr"),
		}}
		require.NoError(t, cmd.Run(ctx))

		assert.Equal(t,
			`{"b":[1,true],"a":null}`+"\n"+
				`{"log":{"level":"debug"}}`+"\n"+
				`{"expr":"(2 ^ (3 ^ 2))","value":512}`+"\n",
			out.String())
	})

	t.Run("glob yaml", func(t *testing.T) {
		ctx, out, _ := console("")

		cmd := Parse{Output: OutputYAML, Indent: 2, Jobs: 1, Glob: []string{filepath.Join(dir, "*.ini")}}
		require.NoError(t, cmd.Run(ctx))

		assert.Equal(t, "log:\n  level: debug\n", out.String())
	})

	t.Run("stdin", func(t *testing.T) {
		ctx, out, _ := console("[1, 2]")

		cmd := Parse{Format: "json", Output: OutputJSON, Indent: 2}
		require.NoError(t, cmd.Run(ctx))

		assert.Equal(t, "[\n  1,\n  2\n]\n", out.String())
	})

	t.Run("stdin without format", func(t *testing.T) {
		ctx, _, _ := console("[1]")

		err := (&Parse{Output: OutputJSON}).Run(ctx)
		assert.ErrorIs(t, err, ErrSelectFormat)
		assert.ErrorIs(t, err, pkg.ErrUnknownFormat)
	})

	t.Run("unknown format", func(t *testing.T) {
		ctx, _, _ := console("")

		err := (&Parse{Format: "jsn", Output: OutputJSON}).Run(ctx)
		require.ErrorIs(t, err, pkg.ErrUnknownFormat)
		assert.Contains(t, err.Error(), `did you mean "json"?`)
	})

	t.Run("failure", func(t *testing.T) {
		bad := filepath.Join(writeFiles(t, map[string]string{"bad.json": "{\n  \"a\" 1\n}"}), "bad.json")

		ctx, out, errs := console("")

		cmd := Parse{Output: OutputJSON, Sources: []string{bad, filepath.Join(dir, "one.json")}}
		err := cmd.Run(ctx)
		require.ErrorIs(t, err, pkg.ErrParse)
		assert.Contains(t, err.Error(), "1 of 2 inputs")

		assert.Equal(t, `{"b":[1,true],"a":null}`+"\n", out.String())
		assert.Contains(t, errs.String(), bad+":2:7")
		assert.Contains(t, errs.String(), `  "a" 1`)
		assert.Contains(t, errs.String(), "^")
	})

	t.Run("diagnostic write error", func(t *testing.T) {
		bad := filepath.Join(writeFiles(t, map[string]string{"bad.json": "[1,,]"}), "bad.json")
		closed := errors.New("closed")

		ctx := WithConsole(context.Background(), Console{
			In:  strings.NewReader(""),
			Out: io.Discard,
			Err: failWriter{err: closed},
		})

		err := (&Parse{Output: OutputJSON, Sources: []string{bad}}).Run(ctx)
		require.ErrorIs(t, err, ErrWriteOutput)
		assert.ErrorIs(t, err, closed)
	})

	t.Run("no matches", func(t *testing.T) {
		ctx, _, _ := console("")

		err := (&Parse{Output: OutputJSON, Glob: []string{filepath.Join(dir, "*.http")}}).Run(ctx)
		assert.ErrorIs(t, err, pkg.ErrNoInput)
	})
}

func TestStream(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		ctx, out, _ := console(" 1 [2, \"three\"]\n{\"four\": true} null ")

		require.NoError(t, (&Stream{Format: "json", Output: OutputJSON, Source: "-"}).Run(ctx))
		assert.Equal(t, "1\n[2,\"three\"]\n{\"four\":true}\nnull\n", out.String())
	})

	t.Run("http", func(t *testing.T) {
		ctx, out, _ := console("GET /a HTTP/1.1\r\nHost: x\r\n\r\nGET /b HTTP/1.0\r\nAccept: */*\r\n\r\n")

		require.NoError(t, (&Stream{Format: "http", Output: OutputJSON, Source: "-"}).Run(ctx))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"method":"GET","uri":"/a","version":"1.1","headers":{"Host":"x"}}`, lines[0])
		assert.JSONEq(t, `{"method":"GET","uri":"/b","version":"1.0","headers":{"Accept":"*/*"}}`, lines[1])
	})

	t.Run("no streaming form", func(t *testing.T) {
		ctx, _, _ := console("x = 1")

		err := (&Stream{Format: "ini", Output: OutputJSON, Source: "-"}).Run(ctx)
		assert.ErrorIs(t, err, ErrSelectFormat)
	})

	t.Run("values before end of input", func(t *testing.T) {
		pr, pw := io.Pipe()
		out := &chanWriter{writes: make(chan string, 8)}

		ctx := WithConsole(context.Background(), Console{In: pr, Out: out, Err: io.Discard})

		done := make(chan error, 1)

		go func() {
			done <- (&Stream{Format: "json", Output: OutputJSON, Source: "-"}).Run(ctx)
		}()

		_, err := pw.Write([]byte("1 2 "))
		require.NoError(t, err)

		for _, want := range []string{"1\n", "2\n"} {
			select {
			case got := <-out.writes:
				assert.Equal(t, want, got)
			case <-time.After(5 * time.Second):
				t.Fatalf("no output for %q while input is still open", want)
			}
		}

		require.NoError(t, pw.Close())
		require.NoError(t, <-done)
	})

	t.Run("error after values", func(t *testing.T) {
		ctx, out, _ := console("[1] [2,,]")

		err := (&Stream{Format: "json", Output: OutputJSON, Source: "-"}).Run(ctx)
		require.ErrorIs(t, err, pkg.ErrParse)
		assert.Contains(t, err.Error(), "value 2")
		assert.Contains(t, err.Error(), "offset 6")
		assert.Equal(t, "[1]\n", out.String())
	})
}

func TestFormats(t *testing.T) {
	ctx, out, _ := console("")

	require.NoError(t, Formats{}.Run(ctx))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "json   parse, stream"))
	assert.True(t, strings.HasPrefix(lines[1], "ini    parse "))
}

func TestVersion(t *testing.T) {
	ctx, out, _ := console("")

	require.NoError(t, (&Version{}).Run(ctx))
	assert.Equal(t, pkg.Name+" "+pkg.Version()+"\n", out.String())
}

func TestError(t *testing.T) {
	cause := errors.New("boom")

	err := ErrReadInput.With(slog.String("path", "x")).Wrap(cause)

	assert.Equal(t, "read input: boom", err.Error())
	assert.ErrorIs(t, err, ErrReadInput)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrWriteOutput)

	v := err.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())

	attrs := map[string]string{}
	for _, a := range v.Group() {
		attrs[a.Key] = a.Value.String()
	}

	assert.Equal(t, map[string]string{"error": "read input", "cause": "boom", "path": "x"}, attrs)
	assert.Equal(t, "", NewError("").Error())
}
