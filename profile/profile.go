package profile

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Dir   string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log lines
}

// Stopper ends a profiling session, flushing its output.
type Stopper interface{ Stop() }

// Start begins profiling as described by p. The returned Stopper is never
// nil, and stopping a session that never started does nothing.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
