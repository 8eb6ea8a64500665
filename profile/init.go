package profile

// Profiler selects a profiling mode and where its output is written.
type Profiler struct {
	// Mode is one of [Modes], or empty to disable profiling.
	Mode string
	// Path is the output directory. Empty uses the working directory.
	Path string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Stopper ends a running profile and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling and returns the handle used to stop it.
//
// Start returns a no-op [Stopper] when Mode is empty, when Mode is not a
// known mode, or when the binary was built without the pprof tag.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether the binary was built with profiling support.
func Enabled() bool { return len(Modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
