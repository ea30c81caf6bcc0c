package lsp

import "testing"

func TestServerInitialization(t *testing.T) {
	server := NewServer()
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}

	if server.docs == nil {
		t.Error("Server document manager is nil")
	}

	if server.logger == nil {
		t.Error("Server logger is nil")
	}

	caps := server.capabilities
	if caps.DocumentSymbolProvider != true {
		t.Error("DocumentSymbolProvider should be true")
	}

	if caps.SemanticTokensProvider == nil {
		t.Fatal("SemanticTokensProvider is nil")
	}

	if len(caps.SemanticTokensProvider.Legend.TokenTypes) == 0 {
		t.Error("SemanticTokensProvider.Legend.TokenTypes should not be empty")
	}

	if len(caps.SemanticTokensProvider.Legend.TokenModifiers) == 0 {
		t.Error("SemanticTokensProvider.Legend.TokenModifiers should not be empty")
	}
}

func TestStdRWC(t *testing.T) {
	rwc := stdrwc{}
	_ = rwc.Read
	_ = rwc.Write
	_ = rwc.Close
}
