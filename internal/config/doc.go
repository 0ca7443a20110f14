// Package config defines the format-agnostic settings model for the
// application and the Loader interface that configuration sources implement.
//
// Settings are assembled in layers: built-in defaults, then every file a
// Loader reads (later files win), then BOARDSMITH_* environment variables,
// which may come from a .env file. Concrete file formats such as HCL live in
// separate packages.
package config
