package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every path in order and merges what it finds into a single
	// Model. Paths that do not exist are skipped.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
