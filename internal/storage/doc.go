// Package storage provides the durable client-side state store for unionhub-cli.
//
// The CLI persists exactly two string values across runs: the bearer token
// of the current session and the locale preference. Both live behind the
// small KV interface so that session and locale logic can be exercised
// without a real backend.
//
// Backends:
//
//   - memory.go: in-process map (tests, --storage memory)
//   - file.go: single JSON document written atomically (default)
//   - badger.go: embedded Badger v3 database
//   - encrypted.go: authenticated encryption wrapper for any backend
package storage
