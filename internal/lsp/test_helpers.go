package lsp

// This file intentionally left without jsonrpc2.Request-dependent helpers:
// jsonrpc2.Request exposes only unexported fields, so handler methods that
// take one are exercised through documentManager and the package-level
// conversion helpers instead (see handlers_test.go, document_test.go).
// Full protocol round-trips belong in an integration test against a real
// LSP client.
