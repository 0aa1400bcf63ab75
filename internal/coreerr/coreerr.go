// Package coreerr defines the typed error kinds shared across the core
// runtime's component boundaries (§7). Components return these wrapped with
// fmt.Errorf("...: %w", err) rather than panicking; only ResourceError is
// meant to be fatal to the process.
package coreerr

import "fmt"

// ContentError reports archive/lump problems: bad magic, missing lump,
// truncated file. Recoverable at runtime; fatal only if no IWAD is ever
// located.
type ContentError struct {
	Op  string
	Err error
}

func (e *ContentError) Error() string { return fmt.Sprintf("content: %s: %v", e.Op, e.Err) }
func (e *ContentError) Unwrap() error { return e.Err }

// StateError reports an attempt to reach an undefined game-state: spawning
// an unknown mobj type, executing an unknown ACS opcode, loading an unknown
// savegame thinker class.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string { return fmt.Sprintf("state: %s: %v", e.Op, e.Err) }
func (e *StateError) Unwrap() error { return e.Err }

// NetError reports a malformed or policy-violating network interaction:
// duplicate client id, incompatible game key, malformed packet. The
// offending client is terminated; the session continues.
type NetError struct {
	Op  string
	Err error
}

func (e *NetError) Error() string { return fmt.Sprintf("net: %s: %v", e.Op, e.Err) }
func (e *NetError) Unwrap() error { return e.Err }

// SaveError reports a save/restore failure: unsupported version, failed
// consistency marker. The load is aborted; the caller decides whether to
// revert to a pre-load snapshot or restart the map.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string { return fmt.Sprintf("save: %s: %v", e.Op, e.Err) }
func (e *SaveError) Unwrap() error { return e.Err }

// ResourceError reports memory-zone exhaustion. Unlike the other kinds,
// callers are expected to treat this as fatal.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string { return fmt.Sprintf("resource: %s: %v", e.Op, e.Err) }
func (e *ResourceError) Unwrap() error { return e.Err }

// ConfigError reports a malformed settings file: invalid YAML, unwritable
// path. Recoverable by falling back to Default().
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s: %v", e.Op, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }
