// Package services implements the core use cases: ingestion, embedding,
// hybrid retrieval, and graph extraction. Services depend only on the
// port interfaces, never on concrete adapters.
package services
