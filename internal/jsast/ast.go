// Package jsast provides a module-level JavaScript syntax tree.
//
// Only the constructs that module transforms rewrite are modeled in detail:
// import and export declarations, the declarations they wrap, and the small
// set of statements and expressions that rewrites generate. Everything else
// in a program is preserved as verbatim source text.
package jsast

// Node is implemented by every syntax tree node. Nodes are always pointers;
// the same pointer must never appear twice in one tree.
type Node interface {
	Type() string
}

// Statement is a node that can appear in a statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that can appear in expression position.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of a parsed module.
type Program struct {
	Body []Statement
}

// Verbatim is a run of source text the parser did not model.
type Verbatim struct {
	Text string
}

// ImportDeclaration is `import ... from "source"` or `import "source"`.
type ImportDeclaration struct {
	// Specifiers holds *ImportDefaultSpecifier, *ImportNamespaceSpecifier
	// and *ImportSpecifier nodes in source order.
	Specifiers []Node
	Source     *StringLiteral
	// Attributes is the raw `with {...}` clause, if any.
	Attributes string
}

// ImportDefaultSpecifier is the `d` in `import d from "m"`.
type ImportDefaultSpecifier struct {
	Local *Identifier
}

// ImportNamespaceSpecifier is the `* as ns` in `import * as ns from "m"`.
type ImportNamespaceSpecifier struct {
	Local *Identifier
}

// ImportSpecifier is `a` or `a as b` inside import braces.
type ImportSpecifier struct {
	// Imported is an *Identifier or a *StringLiteral.
	Imported Node
	Local    *Identifier
}

// ExportNamedDeclaration is `export <declaration>` or `export {...} [from "m"]`.
type ExportNamedDeclaration struct {
	// Declaration is a *VariableDeclaration, *FunctionDeclaration or *ClassDeclaration.
	Declaration Statement
	// Specifiers holds *ExportSpecifier and *ExportNamespaceSpecifier nodes.
	Specifiers []Node
	Source     *StringLiteral
}

// ExportSpecifier is `a` or `a as b` inside export braces.
type ExportSpecifier struct {
	// Local and Exported are *Identifier or *StringLiteral.
	Local    Node
	Exported Node
}

// ExportNamespaceSpecifier is `* as ns` in `export * as ns from "m"`.
type ExportNamespaceSpecifier struct {
	Exported Node
}

// ExportDefaultDeclaration is `export default ...`.
type ExportDefaultDeclaration struct {
	// Declaration is a *FunctionDeclaration, *ClassDeclaration or an Expression.
	Declaration Node
}

// ExportAllDeclaration is `export * from "m"`.
type ExportAllDeclaration struct {
	Source *StringLiteral
}

// VariableDeclaration is `var|let|const a = 1, b = 2;`.
type VariableDeclaration struct {
	Kind         string
	Declarations []*VariableDeclarator
}

// VariableDeclarator is one binding of a VariableDeclaration.
type VariableDeclarator struct {
	// ID is an *Identifier or a *Pattern.
	ID   Node
	Init Expression
}

// Pattern is a destructuring binding kept as source text together with the
// names it binds.
type Pattern struct {
	Text  string
	Names []string
}

// FunctionDeclaration is a named (or default-exported anonymous) function.
type FunctionDeclaration struct {
	// Keyword is "function", "function*", "async function" or "async function*".
	Keyword string
	ID      *Identifier
	// Rest is the source from the parameter list to the closing brace.
	Rest string
}

// ClassDeclaration is a class declaration.
type ClassDeclaration struct {
	ID *Identifier
	// Rest is the source from after the name to the closing brace.
	Rest string
}

// ExpressionStatement wraps an expression.
type ExpressionStatement struct {
	Expression Expression
}

// ForInStatement is `for (left in right) body`.
type ForInStatement struct {
	Left  *VariableDeclaration
	Right Expression
	Body  *BlockStatement
}

// BlockStatement is a braced statement list.
type BlockStatement struct {
	Body []Statement
}

// Identifier is a name.
type Identifier struct {
	Name string
}

// StringLiteral is a string. Raw keeps the original quoting when parsed.
type StringLiteral struct {
	Value string
	Raw   string
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
}

// CallExpression is `callee(args...)`.
type CallExpression struct {
	Callee    Expression
	Arguments []Expression
}

// MemberExpression is `object.property` or `object[property]`.
type MemberExpression struct {
	Object   Expression
	Property Expression
	Computed bool
}

// AssignmentExpression is `left op right`.
type AssignmentExpression struct {
	Operator string
	Left     Expression
	Right    Expression
}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	Properties []*ObjectProperty
}

// ObjectProperty is `key: value` inside an object literal.
type ObjectProperty struct {
	Key   Expression
	Value Expression
}

// RawExpression is an expression kept as source text.
type RawExpression struct {
	Text string
}

func (*Program) Type() string                  { return "Program" }
func (*Verbatim) Type() string                 { return "Verbatim" }
func (*ImportDeclaration) Type() string        { return "ImportDeclaration" }
func (*ImportDefaultSpecifier) Type() string   { return "ImportDefaultSpecifier" }
func (*ImportNamespaceSpecifier) Type() string { return "ImportNamespaceSpecifier" }
func (*ImportSpecifier) Type() string          { return "ImportSpecifier" }
func (*ExportNamedDeclaration) Type() string   { return "ExportNamedDeclaration" }
func (*ExportSpecifier) Type() string          { return "ExportSpecifier" }
func (*ExportNamespaceSpecifier) Type() string { return "ExportNamespaceSpecifier" }
func (*ExportDefaultDeclaration) Type() string { return "ExportDefaultDeclaration" }
func (*ExportAllDeclaration) Type() string     { return "ExportAllDeclaration" }
func (*VariableDeclaration) Type() string      { return "VariableDeclaration" }
func (*VariableDeclarator) Type() string       { return "VariableDeclarator" }
func (*Pattern) Type() string                  { return "Pattern" }
func (*FunctionDeclaration) Type() string      { return "FunctionDeclaration" }
func (*ClassDeclaration) Type() string         { return "ClassDeclaration" }
func (*ExpressionStatement) Type() string      { return "ExpressionStatement" }
func (*ForInStatement) Type() string           { return "ForInStatement" }
func (*BlockStatement) Type() string           { return "BlockStatement" }
func (*Identifier) Type() string               { return "Identifier" }
func (*StringLiteral) Type() string            { return "StringLiteral" }
func (*BooleanLiteral) Type() string           { return "BooleanLiteral" }
func (*CallExpression) Type() string           { return "CallExpression" }
func (*MemberExpression) Type() string         { return "MemberExpression" }
func (*AssignmentExpression) Type() string     { return "AssignmentExpression" }
func (*ObjectExpression) Type() string         { return "ObjectExpression" }
func (*ObjectProperty) Type() string           { return "ObjectProperty" }
func (*RawExpression) Type() string            { return "RawExpression" }

func (*Verbatim) statementNode()                 {}
func (*ImportDeclaration) statementNode()        {}
func (*ExportNamedDeclaration) statementNode()   {}
func (*ExportDefaultDeclaration) statementNode() {}
func (*ExportAllDeclaration) statementNode()     {}
func (*VariableDeclaration) statementNode()      {}
func (*FunctionDeclaration) statementNode()      {}
func (*ClassDeclaration) statementNode()         {}
func (*ExpressionStatement) statementNode()      {}
func (*ForInStatement) statementNode()           {}
func (*BlockStatement) statementNode()           {}

func (*Identifier) expressionNode()           {}
func (*StringLiteral) expressionNode()        {}
func (*BooleanLiteral) expressionNode()       {}
func (*CallExpression) expressionNode()       {}
func (*MemberExpression) expressionNode()     {}
func (*AssignmentExpression) expressionNode() {}
func (*ObjectExpression) expressionNode()     {}
func (*RawExpression) expressionNode()        {}

// NewIdentifier returns a fresh identifier node.
func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

// NewStringLiteral returns a fresh string literal without raw text.
func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{Value: value}
}

// Call builds a call expression.
func Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{Callee: callee, Arguments: args}
}

// Member builds a non-computed member expression `object.name`.
func Member(object Expression, name string) *MemberExpression {
	return &MemberExpression{Object: object, Property: NewIdentifier(name)}
}

// Var builds `var id = init;`.
func Var(id string, init Expression) *VariableDeclaration {
	return &VariableDeclaration{
		Kind:         "var",
		Declarations: []*VariableDeclarator{{ID: NewIdentifier(id), Init: init}},
	}
}

// ExprStmt wraps an expression in a statement.
func ExprStmt(e Expression) *ExpressionStatement {
	return &ExpressionStatement{Expression: e}
}
