// Package connectors provides front ends that feed documents into
// memory from external locations. Each connector knows how to observe
// one kind of source (currently the local filesystem).
package connectors
