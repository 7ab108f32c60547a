package parser

import (
	"strings"

	"esclass/pkg/lexer"
)

// PropertyName is either a literal name (identifier, string, or numeric
// literal, reduced to a Symbol when statically known) or a computed name
// (an arbitrary expression) — spec.md §3 "PropertyName".
type PropertyName struct {
	Literal    Symbol
	HasLiteral bool
	Computed   Expression
}

func (p PropertyName) String() string {
	if p.HasLiteral {
		return propertyNameLiteralString
	}
	return "[computed]"
}

// propertyNameLiteralString is resolved lazily by callers that have access
// to the Interner; String() above exists only to satisfy debugging call
// sites that don't.
const propertyNameLiteralString = "<name>"

// Resolve renders the property name using in, for diagnostics/printing.
func (p PropertyName) Resolve(in *Interner) string {
	if p.HasLiteral {
		return in.Resolve(p.Literal)
	}
	return "[" + p.Computed.String() + "]"
}

// MethodKind is the tagged variant of spec.md §3 "MethodDefinition".
type MethodKind int

const (
	MethodOrdinary MethodKind = iota
	MethodGet
	MethodSet
	MethodGenerator
	MethodAsync
	MethodAsyncGenerator
)

func (k MethodKind) String() string {
	switch k {
	case MethodGet:
		return "getter"
	case MethodSet:
		return "setter"
	case MethodGenerator:
		return "generator method"
	case MethodAsync:
		return "async method"
	case MethodAsyncGenerator:
		return "async generator method"
	default:
		return "method"
	}
}

// MethodDefinition carries a function value plus the tag distinguishing
// Ordinary/Get/Set/Generator/Async/AsyncGenerator (spec.md §3).
type MethodDefinition struct {
	Kind     MethodKind
	Function *FunctionLiteral
}

// ClassElement is the output tagged union of spec.md §3: every concrete
// type below is a distinct ClassElement case, matched exhaustively rather
// than through polymorphic dispatch (spec.md §9 "Tagged variants").
type ClassElement interface {
	classElementNode()
	IsStatic() bool
}

// MethodElement covers MethodDefinition(name, method) and
// StaticMethodDefinition(name, method): a public, non-private method
// (ordinary/getter/setter/generator/async/async-generator).
type MethodElement struct {
	Token  lexer.Token
	Name   PropertyName
	Method MethodDefinition
	Static bool
}

func (m *MethodElement) classElementNode() {}
func (m *MethodElement) IsStatic() bool    { return m.Static }

// FieldElement covers FieldDefinition(name, init) and
// StaticFieldDefinition(name, init).
type FieldElement struct {
	Token       lexer.Token
	Name        PropertyName
	Initializer Expression // nil when the field has no initializer
	Static      bool
}

func (f *FieldElement) classElementNode() {}
func (f *FieldElement) IsStatic() bool    { return f.Static }

// PrivateMethodElement covers PrivateMethodDefinition(name, method) and
// PrivateStaticMethodDefinition(name, method).
type PrivateMethodElement struct {
	Token  lexer.Token
	Name   Symbol
	Method MethodDefinition
	Static bool
}

func (p *PrivateMethodElement) classElementNode() {}
func (p *PrivateMethodElement) IsStatic() bool    { return p.Static }

// PrivateFieldElement covers PrivateFieldDefinition(name, init) and
// PrivateStaticFieldDefinition(name, init).
type PrivateFieldElement struct {
	Token       lexer.Token
	Name        Symbol
	Initializer Expression
	Static      bool
}

func (p *PrivateFieldElement) classElementNode() {}
func (p *PrivateFieldElement) IsStatic() bool    { return p.Static }

// StaticBlockElement covers StaticBlock(statementList).
type StaticBlockElement struct {
	Token lexer.Token
	Body  *BlockStatement
}

func (s *StaticBlockElement) classElementNode() {}
func (s *StaticBlockElement) IsStatic() bool    { return true }

// Class is the output node of spec.md §3: name Symbol (or the sentinel
// `default` when IsDefaultExport holds), optional super-expression,
// optional constructor function, ordered list of ClassElement.
type Class struct {
	Token           lexer.Token
	Name            Symbol
	IsDefaultExport bool // true when Name is the `default` sentinel (anonymous default export)
	HasName         bool // false when the class has no binding identifier (anonymous class expression or anonymous default export)
	SuperClass      Expression
	Constructor     *FunctionLiteral
	Elements        []ClassElement
}

func (c *Class) expressionNode()      {} // a class can appear as a ClassExpression
func (c *Class) statementNode()       {} // ...or as a ClassDeclaration
func (c *Class) TokenLiteral() string { return c.Token.Literal }
func (c *Class) String() string {
	var parts []string
	for _, el := range c.Elements {
		switch e := el.(type) {
		case *MethodElement:
			parts = append(parts, e.Method.Kind.String())
		case *FieldElement:
			parts = append(parts, "field")
		case *PrivateMethodElement:
			parts = append(parts, "private "+e.Method.Kind.String())
		case *PrivateFieldElement:
			parts = append(parts, "private field")
		case *StaticBlockElement:
			parts = append(parts, "static block")
		}
	}
	return "class { " + strings.Join(parts, "; ") + " }"
}

// PrivateElementKind is the current kind recorded for a private name in the
// private-names environment (spec.md §3 "PrivateElementKind" and §4.6).
type PrivateElementKind int

const (
	PrivateValue PrivateElementKind = iota
	PrivateGetter
	PrivateSetter
	PrivateStaticValue
	PrivateStaticGetter
	PrivateStaticSetter
)

func (k PrivateElementKind) isStatic() bool {
	return k == PrivateStaticValue || k == PrivateStaticGetter || k == PrivateStaticSetter
}
