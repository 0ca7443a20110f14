// Package app contains the core application logic. It wires settings, the
// library catalog, the board database and the build pipeline together, and
// exposes one method per user-facing query, decoupled from any specific
// entrypoint like a CLI.
package app
