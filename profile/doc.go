// Package profile wraps [github.com/pkg/profile] for the knit command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing, so
// callers never need build-tag guards of their own.
//
// A [Profiler] names one mode and an output directory:
//
//	defer profile.Profiler{Mode: "cpu", Path: dir}.Start().Stop()
//
// The CLI exposes the same fields as --pprof-mode and --pprof-dir. Grammar
// hot paths (repetition, ordered choice, and checkpoint rewinds) show up
// most clearly in "cpu" and "allocs" profiles taken over a large input:
//
//	knit --pprof-mode cpu parse --glob 'corpus/**/*.json' > /dev/null
//	go tool pprof -http=: "$XDG_CACHE_HOME/knit/pprof/cpu.pprof"
//
// The tagged build also imports [net/http/pprof] for its handler
// registration on the default mux.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
