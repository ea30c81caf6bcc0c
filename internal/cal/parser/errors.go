// Package parser implements a predictive recursive-descent parser for C/AL
// with bounded local error recovery: every parse function either consumes
// the construct it recognizes or synthesizes a partial node and records a
// ParseError, so the parser never aborts on malformed input.
package parser

import (
	"fmt"

	"github.com/cal-lang/cal-ls/internal/cal/token"
)

// ErrorKind categorizes a ParseError for callers that want to filter or
// group diagnostics without parsing Message.
type ErrorKind int

const (
	// ErrorSyntax is a general unexpected-token error.
	ErrorSyntax ErrorKind = iota
	// ErrorMissingToken is an expected token that was absent.
	ErrorMissingToken
	// ErrorCaseBranch is the §4.2 CaseBranch colon-recovery error.
	ErrorCaseBranch
	// ErrorUnknownSection is an unrecognized object-level section header.
	ErrorUnknownSection
)

// ParseError is a single recorded diagnostic from a parse. Message is
// human-readable; Token is the offending (or nearest) token.
type ParseError struct {
	Message string
	Token   token.Token
	Kind    ErrorKind
}

// Error implements the error interface.
func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s (near %q)", e.Token.Line, e.Token.Column, e.Message, e.Token.Text)
}

func newParseError(kind ErrorKind, tok token.Token, message string) ParseError {
	return ParseError{Message: message, Token: tok, Kind: kind}
}
