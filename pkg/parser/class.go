package parser

import (
	"esclass/pkg/errors"
	"esclass/pkg/lexer"
)

// --- 4.1 ClassDeclaration ---

// ParseClassDeclaration implements spec.md §4.1. isDefault allows the
// binding identifier to be omitted (`export default class { ... }`); the
// outer driver/export-statement parser (out of scope per spec.md §1) is
// responsible for threading isDefault through.
func (p *Parser) ParseClassDeclaration(isDefault bool) *Class {
	tok := p.curToken
	p.expect(lexer.CLASS, "class declaration")

	restore := p.setStrict(true)
	defer restore()

	var name Symbol
	hasName := false
	switch {
	case p.curIs(lexer.IDENT), p.curIs(lexer.YIELD), p.curIs(lexer.AWAIT):
		name = p.interner.Intern(p.curToken.Literal)
		hasName = true
		p.next()
	case isDefault:
		name = SymDefault
	default:
		p.unexpected("class binding identifier")
	}

	return p.parseClassTail(tok, name, hasName, isDefault && !hasName)
}

func (p *Parser) parseClassDeclaration() Statement {
	return p.ParseClassDeclaration(false)
}

// parseClassExpression implements the ClassExpression production: like
// ClassDeclaration but the binding identifier is always optional.
func (p *Parser) parseClassExpression() Expression {
	tok := p.curToken
	p.expect(lexer.CLASS, "class expression")

	restore := p.setStrict(true)
	defer restore()

	var name Symbol
	hasName := false
	if p.curIs(lexer.IDENT) || p.curIs(lexer.YIELD) || p.curIs(lexer.AWAIT) {
		name = p.interner.Intern(p.curToken.Literal)
		hasName = true
		p.next()
	}

	return p.parseClassTail(tok, name, hasName, false)
}

// --- 4.2 ClassTail / 4.3 ClassHeritage ---

func (p *Parser) parseClassTail(tok lexer.Token, name Symbol, hasName bool, isDefaultExport bool) *Class {
	cls := &Class{Token: tok, Name: name, HasName: hasName, IsDefaultExport: isDefaultExport}

	if p.curIs(lexer.EXTENDS) {
		cls.SuperClass = p.parseClassHeritage()
	}

	p.expect(lexer.LBRACE, "class body")

	if p.curIs(lexer.RBRACE) {
		p.next()
		return cls
	}

	p.privateEnv.push()
	ctor, elements := p.parseClassElements()
	frame := p.privateEnv.pop()
	p.privateEnv.resolveOrForward(frame, func(ref pendingPrivateRef) {
		p.generalError("private field '#"+p.interner.Resolve(ref.name)+"' must be declared in an enclosing class", p.tokenAt(ref.pos))
	})

	p.expect(lexer.RBRACE, "class body")

	cls.Constructor = ctor
	cls.Elements = elements

	// ClassTail's own post-check (spec.md §4.2): with no heritage clause, a
	// constructor may not contain a direct super(...) call (scenario 4); a
	// heritage clause suppresses this check (scenario 5).
	if cls.SuperClass == nil && ctor != nil && ctor.Body != nil && ctor.Body.ContainsDirectSuperCall() {
		p.generalError("'super' keyword is only valid inside a class constructor of a subclass", tok)
	}

	return cls
}

// tokenAt synthesizes a token carrying pos, for error-reporting call sites
// (like resolveOrForward's callback) that only have a Position in hand.
func (p *Parser) tokenAt(pos errors.Position) lexer.Token {
	return lexer.Token{Line: pos.Line, Column: pos.Column, StartPos: pos.StartPos, EndPos: pos.EndPos}
}

// parseClassHeritage implements spec.md §4.3: `extends` LeftHandSideExpression
// under strict mode, restoring the surrounding strict-mode flag on exit.
func (p *Parser) parseClassHeritage() Expression {
	p.next() // consume 'extends'
	restore := p.setStrict(true)
	defer restore()
	return p.parseLeftHandSideExpression()
}

// --- 4.4 ClassBody ---

// parseClassElements implements the element-iteration half of ClassBody
// (the push/pop of the private-names environment lives in parseClassTail,
// since the pop must happen only after the matching `}`, per spec.md §4.4).
func (p *Parser) parseClassElements() (ctor *FunctionLiteral, elements []ClassElement) {
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		newCtor, elem := p.parseClassElement()
		switch {
		case newCtor != nil:
			if ctor != nil {
				p.generalError("a class may only have one constructor", p.curToken)
				continue
			}
			ctor = newCtor
		case elem != nil:
			p.validateClassElementInBody(elem)
			elements = append(elements, elem)
		default:
			// bare `;` — empty element, nothing to record.
		}
	}
	return ctor, elements
}

// validateClassElementInBody applies the body-phase checks of spec.md
// §4.4's table, beyond what ClassElement itself already enforced.
func (p *Parser) validateClassElementInBody(elem ClassElement) {
	switch e := elem.(type) {
	case *MethodElement:
		if e.Method.Function.Body != nil && e.Method.Function.Body.ContainsDirectSuperCall() {
			p.generalError("'super' keyword is only valid inside a class constructor of a subclass", e.Token)
		}
	case *PrivateMethodElement:
		if e.Method.Function.Body != nil && e.Method.Function.Body.ContainsDirectSuperCall() {
			p.generalError("'super' keyword is only valid inside a class constructor of a subclass", e.Token)
		}
		p.declarePrivateName(e.Name, privateMethodKind(e.Method.Kind, e.Static), e.Token)
	case *PrivateFieldElement:
		if e.Initializer != nil {
			if call := containsDirectSuperCallExpr(e.Initializer); call {
				p.generalError("'super' keyword is only valid inside a class constructor of a subclass", e.Token)
			}
		}
		p.declarePrivateName(e.Name, privateFieldKind(e.Static), e.Token)
	case *FieldElement:
		if e.Initializer != nil {
			if containsArgumentsExpr(e.Initializer) {
				p.generalError("'arguments' is not allowed in class field initializer", e.Token)
			}
			if containsDirectSuperCallExpr(e.Initializer) {
				p.generalError("'super' keyword is only valid inside a class constructor of a subclass", e.Token)
			}
		}
	case *StaticBlockElement:
		if e.Body.ContainsArguments() {
			p.generalError("'arguments' is not allowed in a static initialization block", e.Token)
		}
		if e.Body.ContainsDirectSuperCall() {
			p.generalError("'super' keyword is only valid inside a class constructor of a subclass", e.Token)
		}
	}
}

func (p *Parser) declarePrivateName(name Symbol, kind PrivateElementKind, tok lexer.Token) {
	if err := p.privateEnv.declare(name, kind, p.pos(tok)); err != nil {
		p.errs = append(p.errs, err.(errors.PaseratiError))
	}
}

func privateMethodKind(kind MethodKind, static bool) PrivateElementKind {
	switch {
	case kind == MethodGet && static:
		return PrivateStaticGetter
	case kind == MethodSet && static:
		return PrivateStaticSetter
	case kind == MethodGet:
		return PrivateGetter
	case kind == MethodSet:
		return PrivateSetter
	case static:
		return PrivateStaticValue
	default:
		return PrivateValue
	}
}

func privateFieldKind(static bool) PrivateElementKind {
	if static {
		return PrivateStaticValue
	}
	return PrivateValue
}

// containsArgumentsExpr/containsDirectSuperCallExpr let the body-phase
// checks reuse BlockStatement's walker even though a field initializer is
// a bare Expression, not a block: they wrap the expression in a synthetic
// single-statement block and defer to BlockStatement's own scanners so the
// "don't descend into nested FunctionLiteral, do descend into
// ArrowFunctionLiteral" rule is applied uniformly everywhere.
func containsArgumentsExpr(expr Expression) bool {
	block := &BlockStatement{Statements: []Statement{&ExpressionStatement{Expression: expr}}}
	return block.ContainsArguments()
}

func containsDirectSuperCallExpr(expr Expression) bool {
	block := &BlockStatement{Statements: []Statement{&ExpressionStatement{Expression: expr}}}
	return block.ContainsDirectSuperCall()
}

// --- 4.5 ClassElement ---

// classElementNameStart is the follow-set from spec.md §4.5 item 2: the
// set of token kinds that can start a class element name/head, used for
// the `static`-as-modifier-vs-name decision.
var classElementNameStart = map[lexer.TokenType]bool{
	lexer.IDENT: true, lexer.STRING: true, lexer.NUMBER: true, lexer.BIGINT: true,
	lexer.NULL: true, lexer.UNDEFINED: true, lexer.PRIVATE_IDENT: true,
	lexer.LBRACKET: true, lexer.ASTERISK: true, lexer.LBRACE: true,
	lexer.GET: true, lexer.SET: true, lexer.ASYNC: true, lexer.STATIC: true,
	lexer.CLASS: true, lexer.FUNCTION: true, lexer.RETURN: true, lexer.IF: true,
	lexer.ELSE: true, lexer.WHILE: true, lexer.DO: true, lexer.FOR: true,
	lexer.SWITCH: true, lexer.CASE: true, lexer.DEFAULT: true, lexer.BREAK: true,
	lexer.CONTINUE: true, lexer.NEW: true, lexer.THIS: true, lexer.SUPER: true,
	lexer.TYPEOF: true, lexer.VOID: true, lexer.DELETE: true, lexer.INSTANCEOF: true,
	lexer.IN: true, lexer.TRY: true, lexer.CATCH: true, lexer.FINALLY: true,
	lexer.THROW: true, lexer.YIELD: true, lexer.AWAIT: true, lexer.TRUE: true,
	lexer.FALSE: true, lexer.VAR: true, lexer.LET: true, lexer.CONST: true,
	lexer.EXTENDS: true, lexer.IMPORT: true, lexer.EXPORT: true, lexer.FROM: true,
	lexer.OF: true, lexer.AS: true,
}

// notAMethodHead is the follow-set from spec.md §4.5 item 3: `async`/`get`/
// `set` are ordinary names (not keywords) when followed by one of these.
var notAMethodHead = map[lexer.TokenType]bool{
	lexer.ASSIGN: true, lexer.RBRACE: true, lexer.LPAREN: true, lexer.SEMICOLON: true,
}

// parseClassElement implements spec.md §4.5, the heart of the parser. It
// returns (ctor, nil) when it parsed the class constructor, (nil, elem)
// for any other element, and (nil, nil) for a bare `;`.
func (p *Parser) parseClassElement() (ctor *FunctionLiteral, elem ClassElement) {
	if p.curIs(lexer.SEMICOLON) {
		p.next()
		return nil, nil
	}

	isStatic := false
	if p.curIs(lexer.STATIC) && classElementNameStart[p.peek(1).Type] {
		p.next()
		isStatic = true
		// `static { ... }` is the static-initialization-block form.
		if p.curIs(lexer.LBRACE) {
			return nil, p.parseStaticBlock()
		}
	}

	if p.curIs(lexer.ASTERISK) {
		tok := p.curToken
		p.next()
		isAsync := false
		return nil, p.parseMethodElement(tok, isStatic, true, isAsync)
	}

	if p.curIs(lexer.ASYNC) && !notAMethodHead[p.peek(1).Type] && p.peek(1).Line == p.curToken.Line {
		tok := p.curToken
		p.next()
		isGenerator := false
		if p.curIs(lexer.ASTERISK) {
			isGenerator = true
			p.next()
		}
		return nil, p.parseMethodElement(tok, isStatic, isGenerator, true)
	}

	if p.curIs(lexer.GET) && !notAMethodHead[p.peek(1).Type] {
		tok := p.curToken
		p.next()
		return nil, p.parseAccessorElement(tok, isStatic, MethodGet)
	}

	if p.curIs(lexer.SET) && !notAMethodHead[p.peek(1).Type] {
		tok := p.curToken
		p.next()
		return nil, p.parseAccessorElement(tok, isStatic, MethodSet)
	}

	if p.curIs(lexer.PRIVATE_IDENT) {
		return nil, p.parsePrivateElement(isStatic)
	}

	// Ordinary constructor / method / field.
	if !isStatic && p.curIs(lexer.IDENT) && p.curToken.Literal == "constructor" {
		return p.parseConstructor(), nil
	}

	return nil, p.parsePropertyElement(isStatic)
}

// --- Constructor ---

func (p *Parser) parseConstructor() *FunctionLiteral {
	tok := p.curToken
	name := &Identifier{Token: tok, Value: tok.Literal}
	p.next()
	fn := &FunctionLiteral{Token: tok, Name: name}
	if !p.curIs(lexer.LPAREN) {
		p.unexpected("class constructor")
		return fn
	}
	fn.Parameters, fn.RestParameter = p.parseParameterList()
	fn.Body = p.parseStrictFunctionBody()
	p.checkUseStrictSimpleParams(fn)
	return fn
}

// --- Ordinary / generator / async methods ---

// parseMethodElement handles the plain, `*`-generator, and `async`(`*`)
// spellings of a method. The element name may be private, in which case
// the result is a PrivateMethodElement rather than a MethodElement — a
// `*`/`async` prefix doesn't change which tagged variant the name itself
// produces (spec.md §3: private spellings always produce a private
// ClassElement, independent of method kind).
func (p *Parser) parseMethodElement(tok lexer.Token, isStatic, isGenerator, isAsync bool) ClassElement {
	kind := MethodOrdinary
	switch {
	case isAsync && isGenerator:
		kind = MethodAsyncGenerator
	case isAsync:
		kind = MethodAsync
	case isGenerator:
		kind = MethodGenerator
	}

	pub, priv, isPrivate := p.parseElementNameOrPrivate(isStatic, "generator/async method")
	fn := &FunctionLiteral{Token: tok, IsGenerator: isGenerator, IsAsync: isAsync}
	fn.Parameters, fn.RestParameter = p.parseParameterList()
	fn.Body = p.parseStrictFunctionBody()
	p.checkUseStrictSimpleParams(fn)

	if isPrivate {
		return &PrivateMethodElement{Token: tok, Name: priv, Static: isStatic, Method: MethodDefinition{Kind: kind, Function: fn}}
	}
	p.checkStaticNameForbids(pub, isStatic, tok)
	return &MethodElement{Token: tok, Name: pub, Static: isStatic, Method: MethodDefinition{Kind: kind, Function: fn}}
}

// parseAccessorElement handles both getters and setters (spec.md §4.5's
// `get`/`set` branches): a getter takes an empty parameter list, a setter
// a single (unique) formal parameter. As with parseMethodElement, a
// private element name produces a PrivateMethodElement.
func (p *Parser) parseAccessorElement(tok lexer.Token, isStatic bool, kind MethodKind) ClassElement {
	pub, priv, isPrivate := p.parseElementNameOrPrivate(isStatic, kind.String())
	fn := &FunctionLiteral{Token: tok}
	fn.Parameters, fn.RestParameter = p.parseParameterList()
	if kind == MethodGet && (len(fn.Parameters) != 0 || fn.RestParameter != nil) {
		p.generalError("getter functions must have no parameters", tok)
	}
	if kind == MethodSet && (len(fn.Parameters) != 1 || fn.RestParameter != nil) {
		p.generalError("setter functions must have exactly one parameter", tok)
	}
	fn.Body = p.parseStrictFunctionBody()
	p.checkUseStrictSimpleParams(fn)

	if isPrivate {
		return &PrivateMethodElement{Token: tok, Name: priv, Static: isStatic, Method: MethodDefinition{Kind: kind, Function: fn}}
	}
	p.checkStaticNameForbids(pub, isStatic, tok)
	return &MethodElement{Token: tok, Name: pub, Static: isStatic, Method: MethodDefinition{Kind: kind, Function: fn}}
}

// parseElementNameOrPrivate parses a class element's name for the
// `*`/`async`/`get`/`set` method forms, which (unlike parsePrivateElement's
// bare `#name` dispatch in parseClassElement) only see that the name is
// private after already consuming the `*`/`async`/`get`/`set` token, so
// they need their own private/public fork here rather than relying on the
// PRIVATE_IDENT branch in parseClassElement's top-level dispatch.
// A private spelling of `constructor` is always rejected (spec.md
// invariant 4), mirroring the same check in parsePrivateElement; the
// public `constructor` rejection runs only along the public path via
// parsePropertyNameOrConstructorCheck.
func (p *Parser) parseElementNameOrPrivate(isStatic bool, what string) (pub PropertyName, priv Symbol, isPrivate bool) {
	if p.curIs(lexer.PRIVATE_IDENT) {
		tok := p.curToken
		priv = p.interner.Intern(tok.Literal)
		p.next()
		if priv == SymPrivateConstructor {
			p.generalError("private constructor is not allowed", tok)
		}
		return PropertyName{}, priv, true
	}
	return p.parsePropertyNameOrConstructorCheck(isStatic, what), 0, false
}

// parsePropertyNameOrConstructorCheck parses a PropertyName and rejects it
// when it names (public) `constructor`: generator/async/getter/setter
// spellings of `constructor` are always forbidden (spec.md §4.5 item 4
// cross-reference, invariant 4). Only ever reached along the public-name
// path — parseElementNameOrPrivate intercepts PRIVATE_IDENT before this
// runs, so the private `#constructor` spelling is never loose here.
func (p *Parser) parsePropertyNameOrConstructorCheck(isStatic bool, what string) PropertyName {
	name := p.parsePropertyName()
	if name.HasLiteral && name.Literal == SymConstructor {
		p.generalError("class constructor may not be a "+what, p.curToken)
	}
	return name
}

// --- Private elements ---

func (p *Parser) parsePrivateElement(isStatic bool) ClassElement {
	tok := p.curToken
	nameStr := tok.Literal
	sym := p.interner.Intern(nameStr)
	p.next()

	isPrivateConstructor := sym == SymPrivateConstructor

	if p.curIs(lexer.LPAREN) {
		if isPrivateConstructor {
			p.generalError("private constructor is not allowed", tok)
		}
		fn := &FunctionLiteral{Token: tok}
		fn.Parameters, fn.RestParameter = p.parseParameterList()
		fn.Body = p.parseStrictFunctionBody()
		p.checkUseStrictSimpleParams(fn)
		return &PrivateMethodElement{Token: tok, Name: sym, Static: isStatic, Method: MethodDefinition{Kind: MethodOrdinary, Function: fn}}
	}

	if isPrivateConstructor {
		p.generalError("private constructor is not allowed", tok)
	}
	field := &PrivateFieldElement{Token: tok, Name: sym, Static: isStatic}
	if p.curIs(lexer.ASSIGN) {
		p.next()
		restore := p.setStrict(true)
		field.Initializer = p.parseExpression(ASSIGNMENT)
		restore()
	}
	p.expect(lexer.SEMICOLON, "private field declaration")
	return field
}

// --- Ordinary property (field or method) ---

func (p *Parser) parsePropertyElement(isStatic bool) ClassElement {
	tok := p.curToken
	name := p.parsePropertyName()

	if p.curIs(lexer.LPAREN) {
		if name.HasLiteral && name.Literal == SymConstructor {
			p.generalError("class may not have a method named 'constructor' other than the constructor itself", tok)
		}
		fn := &FunctionLiteral{Token: tok}
		fn.Parameters, fn.RestParameter = p.parseParameterList()
		fn.Body = p.parseStrictFunctionBody()
		p.checkUseStrictSimpleParams(fn)
		p.checkStaticNameForbids(name, isStatic, tok)
		return &MethodElement{Token: tok, Name: name, Static: isStatic, Method: MethodDefinition{Kind: MethodOrdinary, Function: fn}}
	}

	field := &FieldElement{Token: tok, Name: name, Static: isStatic}
	if p.curIs(lexer.ASSIGN) {
		p.next()
		restore := p.setStrict(true)
		field.Initializer = p.parseExpression(ASSIGNMENT)
		restore()
	}
	p.expect(lexer.SEMICOLON, "field declaration")

	if name.HasLiteral && name.Literal == SymConstructor {
		p.generalError("class may not have a field named 'constructor'", tok)
	}
	p.checkStaticNameForbids(name, isStatic, tok)
	return field
}

// checkStaticNameForbids enforces spec.md §4.5's "Static-name forbids"
// table: no static element may be named `prototype`. The rule that no
// field, static or not, may be named `constructor` is checked in
// parsePropertyElement, not here.
func (p *Parser) checkStaticNameForbids(name PropertyName, isStatic bool, tok lexer.Token) {
	if !isStatic || !name.HasLiteral {
		return
	}
	if name.Literal == SymPrototype {
		p.generalError("class may not have static members named 'prototype'", tok)
	}
}

// parsePropertyName implements the PropertyName collaborator (spec.md §6):
// an identifier / keyword-as-name / string / numeric literal reduced to a
// Symbol, or a computed `[expr]` name.
func (p *Parser) parsePropertyName() PropertyName {
	if p.curIs(lexer.LBRACKET) {
		tok := p.curToken
		p.next()
		expr := p.parseExpression(ASSIGNMENT)
		p.expect(lexer.RBRACKET, "computed property name")
		return PropertyName{Computed: &ComputedPropertyName{Token: tok, Expr: expr}}
	}
	tok := p.curToken
	switch tok.Type {
	case lexer.STRING:
		p.next()
		return PropertyName{HasLiteral: true, Literal: p.interner.Intern(tok.Literal)}
	case lexer.NUMBER, lexer.BIGINT:
		p.next()
		return PropertyName{HasLiteral: true, Literal: p.interner.Intern(tok.Literal)}
	default:
		// Any IdentifierName, including reserved words used as names
		// (spec.md §4.5: `static`, `async`, `get`, `set`, and ordinary
		// keywords are all valid property names in this position).
		p.next()
		return PropertyName{HasLiteral: true, Literal: p.interner.Intern(tok.Literal)}
	}
}

// --- Static block ---

func (p *Parser) parseStaticBlock() ClassElement {
	tok := p.curToken
	restore := p.setStrict(true)
	defer restore()
	body := p.parseBlockStatement()
	p.checkLexicalVarCollision(body)
	return &StaticBlockElement{Token: tok, Body: body}
}

// checkLexicalVarCollision implements spec.md scenario 6 / §4.5's static
// block validation: a lexically-declared name (`let`/`const`) may not also
// be declared with `var` in the same statement list. Function declarations
// sharing a name are permitted under non-strict mode, but static blocks
// are always strict, so a duplicate `function` name is also rejected here.
func (p *Parser) checkLexicalVarCollision(body *BlockStatement) {
	lexical := make(map[string]bool)
	varNames := make(map[string]bool)
	for _, stmt := range body.Statements {
		switch s := stmt.(type) {
		case *VariableDeclaration:
			if s.Kind == DeclVar {
				varNames[s.Name.Value] = true
			} else {
				if lexical[s.Name.Value] {
					p.generalError("identifier '"+s.Name.Value+"' has already been declared", s.Token)
				}
				lexical[s.Name.Value] = true
			}
		case *FunctionDeclaration:
			if s.Function.Name != nil {
				if lexical[s.Function.Name.Value] {
					p.generalError("identifier '"+s.Function.Name.Value+"' has already been declared", s.Token)
				}
				lexical[s.Function.Name.Value] = true
			}
		}
	}
	for name := range lexical {
		if varNames[name] {
			p.generalError("identifier '"+name+"' has already been declared (lexical name declared in var names)", body.Token)
		}
	}
}

// --- Shared helpers ---

// parseStrictFunctionBody parses a method/constructor body; class bodies
// are always strict (spec.md glossary: "Strict mode: ... always active
// inside class bodies"), so no save/restore is needed here beyond what the
// caller (already strict) already holds.
func (p *Parser) parseStrictFunctionBody() *BlockStatement {
	return p.parseBlockStatement()
}

// checkUseStrictSimpleParams implements spec.md §4.5's "Method-body
// acceptance rule" / invariant 8: a function body containing a
// "use strict" directive requires a simple parameter list. Every class
// method body is implicitly strict already, so this only matters for a
// redundant explicit directive prologue, which is still checked for
// consistency with the general FunctionBody collaborator's rule.
func (p *Parser) checkUseStrictSimpleParams(fn *FunctionLiteral) {
	if fn.Body == nil || len(fn.Body.Statements) == 0 {
		return
	}
	first, ok := fn.Body.Statements[0].(*ExpressionStatement)
	if !ok {
		return
	}
	str, ok := first.Expression.(*StringLiteral)
	if !ok || str.Value != "use strict" {
		return
	}
	if !fn.IsSimpleParameterList() {
		p.generalError("Illegal 'use strict' in function with non-simple parameter list", fn.Token)
	}
}
