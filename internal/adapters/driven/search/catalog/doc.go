// Package catalog implements the upstream product-search client.
//
// The catalog API is a plain REST service: one GET per keyword, static
// token/secret header auth, JSON results. The adapter throttles
// proactively and tolerates absent fields in every result; the core
// never sees transport details.
package catalog
