// Package profile starts and stops runtime profiling of the tempita command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof ./...
//	tempita --pprof-mode cpu page.tmpl
//	go tool pprof -http=: ~/.cache/tempita/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing, so
// callers never need build constraints of their own.
package profile

// Tag is the build tag that enables profiling.
const Tag = `pprof`
