package config

import "context"

// Loader is the interface for a format-specific sweep loader.
type Loader interface {
	// Load reads sweep definitions from the given paths and merges them into
	// a single format-agnostic Sweep.
	Load(ctx context.Context, paths ...string) (*Sweep, error)
}
