// Package catalog holds the static table of libraries and the dependencies
// they declare. A Catalog is an immutable value: build one with New or
// Default and extend it with With; nothing in the package is global state.
package catalog

import (
	"sort"
)

const (
	// Core is the hardware-abstraction library every other library links against.
	Core = "core"
	// Math is the toolchain's libm. It has no sources of its own.
	Math = "math"

	// DefaultVariant is the board variant used when no board is given.
	DefaultVariant = "standard"
	// NoVariant is passed to the source locator for libraries that do not
	// vary by board.
	NoVariant = "n/a"
)

// IsFoundational reports whether lib is exempt from the implicit dependency
// on Core.
func IsFoundational(lib string) bool {
	return lib == Core || lib == Math
}

// Catalog maps a library name to the libraries it directly depends on.
type Catalog struct {
	deps map[string][]string
}

// New builds a catalog from the given table. The table is copied; duplicate
// and empty dependency names are dropped.
func New(entries map[string][]string) Catalog {
	c := Catalog{deps: make(map[string][]string, len(entries))}
	for lib, deps := range entries {
		c.deps[lib] = normalize(deps)
	}
	return c
}

// Default returns the catalog of the libraries shipped with the Arduino IDE.
func Default() Catalog {
	return New(map[string][]string{
		"Ethernet":      {"SPI"},
		"SD":            {"SPI"},
		"WiFi":          {"SPI"},
		"TFT":           {"SPI"},
		"GSM":           {"SoftwareSerial"},
		"Esplora":       {},
		"Robot_Control": {"SPI", "Wire", "math"},
		"Robot_Motor":   {"math"},
	})
}

// With returns a copy of c where every entry in overrides replaces the
// catalog's declaration for that library.
func (c Catalog) With(overrides map[string][]string) Catalog {
	merged := make(map[string][]string, len(c.deps)+len(overrides))
	for lib, deps := range c.deps {
		merged[lib] = deps
	}
	for lib, deps := range overrides {
		merged[lib] = deps
	}
	return New(merged)
}

// DirectDependencies returns the declared dependencies of lib, sorted.
// Libraries absent from the catalog have none.
func (c Catalog) DirectDependencies(lib string) []string {
	return append([]string(nil), c.deps[lib]...)
}

// Has reports whether lib has an explicit catalog entry.
func (c Catalog) Has(lib string) bool {
	_, ok := c.deps[lib]
	return ok
}

// Libraries returns every library with an explicit entry, sorted.
func (c Catalog) Libraries() []string {
	libs := make([]string, 0, len(c.deps))
	for lib := range c.deps {
		libs = append(libs, lib)
	}
	sort.Strings(libs)
	return libs
}

func normalize(deps []string) []string {
	seen := make(map[string]struct{}, len(deps))
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
