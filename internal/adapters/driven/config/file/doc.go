// Package file provides the TOML-backed configuration store.
//
// Configuration lives at ~/.keywatch/config.toml and supplies defaults
// for every poll flag; flags always win. The store is read-only: a
// batch poller never rewrites its own configuration.
package file
