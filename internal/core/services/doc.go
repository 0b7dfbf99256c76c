// Package services implements the core application logic for keywatch:
// merging upstream search results into the item store (Ingest) and the
// poll cycle that detects items newly observed since process start
// (Poller). Services depend only on domain types and ports.
package services
