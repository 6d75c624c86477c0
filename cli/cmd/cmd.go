package cmd

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/readahead"

	"github.com/ardnew/knit/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable named id, or the empty string.
func kongVar(ctx context.Context, id string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[id]
}

// Console holds the streams a command reads from and writes to.
type Console struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type consoleKey struct{}

// WithConsole returns a new context.Context whose commands use c. Nil fields
// fall back to the standard streams.
func WithConsole(ctx context.Context, c Console) context.Context {
	return context.WithValue(ctx, consoleKey{}, c)
}

func consoleFrom(ctx context.Context) Console {
	c, _ := ctx.Value(consoleKey{}).(Console)

	if c.In == nil {
		c.In = os.Stdin
	}

	if c.Out == nil {
		c.Out = os.Stdout
	}

	if c.Err == nil {
		c.Err = os.Stderr
	}

	return c
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// input is one document named on the command line.
type input struct {
	Path string // file path, or stdinSource
}

// Name returns the display name of in.
func (in input) Name() string {
	if in.Path == stdinSource {
		return "<stdin>"
	}

	return in.Path
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// collect resolves sources and the files matching patterns into inputs.
//
// A file reached more than once (through symlinks, different relative
// paths, or a pattern that overlaps an explicit source) is kept only at its
// first position. All occurrences of "-" collapse into a single stdin input.
// Missing files are returned as errors rather than skipped.
func collect(ctx context.Context, sources, patterns []string) ([]input, error) {
	seen := make(map[fileKey]struct{})

	var (
		inputs   []input
		hasStdin bool
	)

	add := func(path string) error {
		if path == stdinSource {
			if !hasStdin {
				hasStdin = true

				inputs = append(inputs, input{Path: stdinSource})
			}

			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return ErrReadInput.With(slog.String("path", path)).Wrap(err)
		}

		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				log.TraceContext(ctx, "skip duplicate input", slog.String("path", path))

				return nil
			}

			seen[key] = struct{}{}
		}

		inputs = append(inputs, input{Path: path})

		return nil
	}

	for _, src := range sources {
		if err := add(src); err != nil {
			return nil, err
		}
	}

	for _, pattern := range patterns {
		matches, err := glob(pattern)
		if err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "expand pattern",
			slog.String("pattern", pattern),
			slog.Int("matches", len(matches)),
		)

		for _, path := range matches {
			if err := add(path); err != nil {
				return nil, err
			}
		}
	}

	return inputs, nil
}

// glob returns the regular files matching pattern in doublestar syntax,
// relative to the pattern's static base directory.
func glob(pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, ErrBadPattern.With(slog.String("pattern", pattern))
	}

	base, rest := doublestar.SplitPattern(slashed)

	var matches []string

	err := doublestar.GlobWalk(os.DirFS(base), rest, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}

		matches = append(matches, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(path)))

		return nil
	})
	if err != nil {
		return nil, ErrBadPattern.With(slog.String("pattern", pattern)).Wrap(err)
	}

	return matches, nil
}

// openRaw returns an unbuffered reader over in, for callers that act on
// input as it arrives. Stdin is never closed.
func openRaw(in input, stdin io.Reader) (io.ReadCloser, error) {
	if in.Path == stdinSource {
		return io.NopCloser(stdin), nil
	}

	file, err := os.Open(in.Path)
	if err != nil {
		return nil, ErrReadInput.With(slog.String("path", in.Path)).Wrap(err)
	}

	return file, nil
}

// open returns a read-ahead reader over in. Read-ahead fills large blocks
// before returning any data, so it only suits callers that read to EOF.
func open(in input, stdin io.Reader) (io.ReadCloser, error) {
	src, err := openRaw(in, stdin)
	if err != nil {
		return nil, err
	}

	return &aheadReader{ReadCloser: readahead.NewReader(src), src: src}, nil
}

// aheadReader closes both the read-ahead reader and its source.
type aheadReader struct {
	io.ReadCloser

	src io.Closer
}

func (r *aheadReader) Close() error {
	_ = r.ReadCloser.Close()

	return r.src.Close()
}

// readAll reads the whole of in.
func readAll(in input, stdin io.Reader) ([]byte, error) {
	r, err := open(in, stdin)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.With(slog.String("path", in.Name())).Wrap(err)
	}

	return data, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
