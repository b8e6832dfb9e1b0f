// Package app contains the core application logic. It wires the registry,
// the flow loader and the executor together and owns the run lifecycle,
// decoupled from any specific entrypoint like a CLI or server.
package app
