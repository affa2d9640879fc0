// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, embedding and LLM providers,
// configuration, and cost telemetry.
package driven
