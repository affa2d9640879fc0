// Package domain contains the core business types for mnemo.
// These are pure domain objects with no dependencies on storage,
// transports, or external providers.
package domain
