package engine

// Snapshot is one full code-directory evaluation unit (spec.md §2, §4.7).
// Program is the Go-native stand-in for "execute the snapshot in the shared
// global scope" (SPEC_FULL.md §1.1): Go has no embedded eval, so the caller
// (the watcher-adjacent host, or a test) supplies the already-compiled
// top-level statements as a plain function. Ingest runs it once, under the
// engine's single coarse lock, inside a recover()-guarded call.
type Snapshot struct {
	Source  string
	Program func(*Context)
}
