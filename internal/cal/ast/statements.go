package ast

import "github.com/cal-lang/cal-ls/internal/cal/token"

// Statement is implemented by every statement node.
type Statement interface {
	Node
	statementNode()
}

// AssignStmt is `target := value`.
type AssignStmt struct {
	Bounds
	Target Expr
	Value  Expr
}

func (*AssignStmt) statementNode() {}

// IfStmt is `IF expr THEN stmt [ELSE stmt]`.
type IfStmt struct {
	Bounds
	Condition Expr
	Then      Statement
	Else      Statement
}

func (*IfStmt) statementNode() {}

// CaseBranch is `value {, value} ':' statement`, or a partial branch
// synthesized by the recovery algorithm in §4.2 when the ':' is missing.
type CaseBranch struct {
	Bounds
	Values     []Expr
	Statements []Statement
}

// CaseStmt is `CASE expr OF branch+ [ELSE stmt] END`.
type CaseStmt struct {
	Bounds
	Expr       Expr
	Branches   []*CaseBranch
	ElseBranch Statement
}

func (*CaseStmt) statementNode() {}

// WhileStmt is `WHILE expr DO stmt`.
type WhileStmt struct {
	Bounds
	Condition Expr
	Body      Statement
}

func (*WhileStmt) statementNode() {}

// RepeatStmt is `REPEAT stmt+ UNTIL expr`.
type RepeatStmt struct {
	Bounds
	Body  []Statement
	Until Expr
}

func (*RepeatStmt) statementNode() {}

// WithStmt is `WITH expr DO stmt`.
type WithStmt struct {
	Bounds
	Expr Expr
	Body Statement
}

func (*WithStmt) statementNode() {}

// ForStmt is `FOR id := expr (TO|DOWNTO) expr DO stmt`.
type ForStmt struct {
	Bounds
	Variable string
	From     Expr
	To       Expr
	DownTo   bool
	Body     Statement
}

func (*ForStmt) statementNode() {}

// ExitStmt is `EXIT [(expr)]`.
type ExitStmt struct {
	Bounds
	Value Expr // nil when EXIT has no argument
}

func (*ExitStmt) statementNode() {}

// CallStmt is an expression statement whose expression is a call, e.g.
// `MESSAGE('hi');`.
type CallStmt struct {
	Bounds
	Call Expr
}

func (*CallStmt) statementNode() {}

// CompoundStmt is `BEGIN stmt* END`.
type CompoundStmt struct {
	Bounds
	Statements []Statement
}

func (*CompoundStmt) statementNode() {}

// ErrorStmt is a synthesized placeholder for an unparseable span,
// retaining the raw tokens the recovery pass skipped over.
type ErrorStmt struct {
	Bounds
	Tokens []token.Token
}

func (*ErrorStmt) statementNode() {}
