// Package driven defines the driven ports (secondary/output interfaces)
// for keywatch. These are the interfaces the core services depend on and
// the adapters implement: the item store, the upstream search client and
// the configuration store.
package driven
