// Package dag is a small, concurrency-safe directed graph used to model
// library dependencies. Each node keeps both its out-set (dependencies) and
// its in-set (dependents), and the graph can produce a topological order in
// which every node follows the nodes it depends on.
package dag
