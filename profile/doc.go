// Package profile provides optional runtime profiling for stargn.
//
// # Overview
//
// This package integrates [github.com/pkg/profile]. Profiling must be enabled
// at build time with the "pprof" build tag:
//
//	go build -tags pprof -o stargn .
//
// Without the tag, [Modes] is empty and every [Profiler] is a no-op.
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Using a Profiler
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles", Quiet: true}
//	stop := p.Start()
//	defer stop.Stop()
//
// Profile files are named for their mode (cpu.pprof, mem.pprof, ...).
//
// # Command-Line Usage
//
//	# Profile evaluation of every build script under the source root
//	stargn --pprof-mode cpu gen
//
//	# Heap profile written to a custom directory
//	stargn --pprof-mode heap --pprof-dir ./profiles desc
//
// The default output directory is the "pprof" directory under the user cache
// directory for stargn.
//
// # Analyzing Profile Data
//
//	go tool pprof ./stargn /tmp/profiles/cpu.pprof
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//	go tool pprof -base=old.pprof new.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
