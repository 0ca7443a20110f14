// Package resolver expands a set of requested libraries into their full
// dependency closure and orders it. The same Resolution serves the build
// (which only needs the closure) and the linker (which needs the order).
package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/boardsmith/internal/catalog"
	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/dag"
	"github.com/vk/boardsmith/internal/faults"
)

// Resolution is the outcome of resolving a request against a catalog.
type Resolution struct {
	// Order lists the closure with every library after all of its dependencies.
	Order []string

	deps    map[string][]string
	closure map[string]struct{}
}

// Closure returns every library in the resolution, sorted.
func (r *Resolution) Closure() []string {
	libs := make([]string, 0, len(r.closure))
	for lib := range r.closure {
		libs = append(libs, lib)
	}
	slices.Sort(libs)
	return libs
}

// Contains reports whether lib is part of the closure.
func (r *Resolution) Contains(lib string) bool {
	_, ok := r.closure[lib]
	return ok
}

// LinkOrder returns the closure with every library ahead of the libraries it
// depends on, which is the order a single-pass linker needs.
func (r *Resolution) LinkOrder() []string {
	order := slices.Clone(r.Order)
	slices.Reverse(order)
	return order
}

// Dependencies returns the direct dependencies recorded for lib during
// resolution, including the implicit dependency on the core library.
func (r *Resolution) Dependencies(lib string) []string {
	return slices.Clone(r.deps[lib])
}

// Resolver resolves library requests against a fixed catalog.
type Resolver struct {
	catalog catalog.Catalog
}

// New returns a resolver over the given catalog.
func New(c catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve computes the transitive closure of requested and a build order for
// it. Every library other than the core and math libraries gains an implicit
// dependency on the core library. An empty request resolves to an empty
// closure. A cycle fails with a *faults.CycleError naming the libraries that
// could not be ordered.
func (r *Resolver) Resolve(ctx context.Context, requested []string) (*Resolution, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving library dependencies.", "requested", requested)

	g := dag.New()
	deps := make(map[string][]string)

	var frontier []string
	for _, lib := range requested {
		if lib == "" || g.HasNode(lib) {
			continue
		}
		g.AddNode(lib)
		frontier = append(frontier, lib)
	}

	for round := 0; len(frontier) > 0; round++ {
		var next []string
		for _, lib := range frontier {
			libDeps := r.catalog.DirectDependencies(lib)
			if !catalog.IsFoundational(lib) && !slices.Contains(libDeps, catalog.Core) {
				libDeps = append(libDeps, catalog.Core)
			}
			deps[lib] = libDeps

			for _, dep := range libDeps {
				if !g.HasNode(dep) {
					g.AddNode(dep)
					next = append(next, dep)
				}
				if err := g.AddEdge(dep, lib); err != nil {
					// Only a library listing itself can get here.
					return nil, &faults.CycleError{Libraries: []string{lib}}
				}
			}
		}
		logger.Debug("Expanded dependency frontier.", "round", round, "discovered", next)
		frontier = next
	}

	order, err := g.TopologicalSort()
	if err != nil {
		var ce *dag.CycleError
		if errors.As(err, &ce) {
			logger.Debug("Dependency cycle detected.", "unresolved", ce.Nodes)
			return nil, &faults.CycleError{Libraries: ce.Nodes}
		}
		return nil, fmt.Errorf("ordering libraries: %w", err)
	}

	closure := make(map[string]struct{}, len(order))
	for _, lib := range order {
		closure[lib] = struct{}{}
	}
	logger.Debug("Dependencies resolved.", "order", order)

	return &Resolution{Order: order, deps: deps, closure: closure}, nil
}

// Closure is the order-insensitive view of Resolve.
func (r *Resolver) Closure(ctx context.Context, requested []string) ([]string, error) {
	res, err := r.Resolve(ctx, requested)
	if err != nil {
		return nil, err
	}
	return res.Closure(), nil
}
