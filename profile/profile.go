package profile

import "slices"

// Stopper stops a running profiler.
type Stopper interface{ Stop() }

// Profiler selects a profiling mode and where its output goes.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty means the working directory
	Quiet bool   // suppress the profiler's own log lines
}

// Enabled reports whether p names a mode supported by this build.
func (p Profiler) Enabled() bool {
	return p.Mode != "" && slices.Contains(Modes(), p.Mode)
}

// Start starts profiling and returns its Stopper.
//
// Without the pprof build tag, or when Mode is empty or unknown, Start
// returns a Stopper that does nothing. Both Start and Stop are always safe
// to call.
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
