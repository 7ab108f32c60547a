package parser

import (
	"testing"

	"esclass/pkg/lexer"
	"esclass/pkg/source"
)

// parseClassSource is the shared test harness: build a fresh Interner (so
// well-known symbols are installed) and Parser over input, grounded on the
// teacher's own `lexer.NewLexer(tt.input); NewParser(l)` test idiom
// (pkg/parser/generic_parsing_test.go), extended with the src/interner
// arguments this parser's Cursor requires.
func parseClassSource(t *testing.T, input string) (*Program, *Parser) {
	t.Helper()
	src := source.NewSourceFile("<test>", "", input)
	l := lexer.NewLexerWithSource(src)
	in := NewInterner()
	p := New(l, src, in)
	prog := p.ParseProgram()
	return prog, p
}

func firstClass(t *testing.T, prog *Program) *Class {
	t.Helper()
	if len(prog.Statements) == 0 {
		t.Fatalf("expected at least one statement, got 0")
	}
	cls, ok := prog.Statements[0].(*Class)
	if !ok {
		t.Fatalf("expected *Class, got %T", prog.Statements[0])
	}
	return cls
}

func expectNoErrors(t *testing.T, p *Parser) {
	t.Helper()
	if errs := p.Errors(); len(errs) != 0 {
		t.Errorf("unexpected parse errors:")
		for _, e := range errs {
			t.Errorf("  %s", e.Error())
		}
	}
}

func expectErrors(t *testing.T, p *Parser) {
	t.Helper()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected parse errors, got none")
	}
}

func TestParseEmptyClass(t *testing.T) {
	prog, p := parseClassSource(t, "class Foo {}")
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if !cls.HasName || p.interner.Resolve(cls.Name) != "Foo" {
		t.Errorf("expected class named Foo, got HasName=%v Name=%q", cls.HasName, p.interner.Resolve(cls.Name))
	}
	if len(cls.Elements) != 0 || cls.Constructor != nil {
		t.Errorf("expected no elements/constructor in an empty class")
	}
}

func TestParseClassWithConstructorAndMethods(t *testing.T) {
	input := `
	class Point {
		constructor(x, y) {
			this.x = x;
			this.y = y;
		}
		distanceTo(other) {
			return other.x;
		}
		static origin() {
			return new Point(0, 0);
		}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if cls.Constructor == nil {
		t.Fatalf("expected a constructor")
	}
	if len(cls.Constructor.Parameters) != 2 {
		t.Errorf("expected constructor to have 2 parameters, got %d", len(cls.Constructor.Parameters))
	}
	if len(cls.Elements) != 2 {
		t.Fatalf("expected 2 class elements, got %d", len(cls.Elements))
	}
	method, ok := cls.Elements[0].(*MethodElement)
	if !ok {
		t.Fatalf("expected first element to be a MethodElement, got %T", cls.Elements[0])
	}
	if method.Static {
		t.Errorf("expected distanceTo to be an instance method")
	}
	staticMethod, ok := cls.Elements[1].(*MethodElement)
	if !ok || !staticMethod.Static {
		t.Fatalf("expected second element to be a static MethodElement")
	}
}

func TestParseClassWithHeritage(t *testing.T) {
	input := `
	class Square extends Shape {
		constructor(side) {
			super(side, side);
		}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if cls.SuperClass == nil {
		t.Fatalf("expected a super class expression")
	}
	ident, ok := cls.SuperClass.(*Identifier)
	if !ok || ident.Value != "Shape" {
		t.Errorf("expected super class Shape, got %#v", cls.SuperClass)
	}
}

func TestParseClassFieldsWithAndWithoutInitializer(t *testing.T) {
	input := `
	class Counter {
		count = 0;
		label;
		static max = 100;
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if len(cls.Elements) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(cls.Elements))
	}
	count, ok := cls.Elements[0].(*FieldElement)
	if !ok || count.Initializer == nil {
		t.Fatalf("expected count to be a field with an initializer")
	}
	label, ok := cls.Elements[1].(*FieldElement)
	if !ok || label.Initializer != nil {
		t.Fatalf("expected label to be a field with no initializer")
	}
	max, ok := cls.Elements[2].(*FieldElement)
	if !ok || !max.Static {
		t.Fatalf("expected max to be a static field")
	}
}

func TestParseClassPrivateMembers(t *testing.T) {
	input := `
	class BankAccount {
		#balance = 0;
		#validate(amount) {
			return amount > 0;
		}
		deposit(amount) {
			if (this.#validate(amount)) {
				this.#balance = this.#balance;
			}
		}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if len(cls.Elements) != 3 {
		t.Fatalf("expected 3 elements (private field, private method, deposit), got %d", len(cls.Elements))
	}
	if _, ok := cls.Elements[0].(*PrivateFieldElement); !ok {
		t.Errorf("expected first element to be a PrivateFieldElement, got %T", cls.Elements[0])
	}
	if _, ok := cls.Elements[1].(*PrivateMethodElement); !ok {
		t.Errorf("expected second element to be a PrivateMethodElement, got %T", cls.Elements[1])
	}
}

func TestParseClassGetterSetterPair(t *testing.T) {
	input := `
	class Temperature {
		#celsius = 0;
		get celsius() {
			return this.#celsius;
		}
		set celsius(value) {
			this.#celsius = value;
		}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	getter, ok := cls.Elements[1].(*MethodElement)
	if !ok || getter.Method.Kind != MethodGet {
		t.Fatalf("expected second element to be a getter")
	}
	setter, ok := cls.Elements[2].(*MethodElement)
	if !ok || setter.Method.Kind != MethodSet {
		t.Fatalf("expected third element to be a setter")
	}
}

// --- Private getter/setter/generator/async methods must produce
// --- PrivateMethodElement and be entered into the private-names
// --- environment, not silently treated as public methods named "#x". ---

func TestPrivateGetterProducesPrivateMethodElement(t *testing.T) {
	input := `
	class Foo {
		get #x() { return 1; }
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	m, ok := cls.Elements[0].(*PrivateMethodElement)
	if !ok || m.Method.Kind != MethodGet {
		t.Fatalf("expected a private getter, got %#v", cls.Elements[0])
	}
}

func TestPrivateGetterReferencedElsewhereResolves(t *testing.T) {
	input := `
	class Foo {
		get #x() { return 1; }
		useIt() {
			return this.#x;
		}
	}`
	_, p := parseClassSource(t, input)
	expectNoErrors(t, p)
}

func TestPrivateGeneratorAndAsyncMethodsProducePrivateMethodElement(t *testing.T) {
	input := `
	class Foo {
		*#gen() {}
		async #asyncMethod() {}
		async *#asyncGen() {}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	kinds := []MethodKind{MethodGenerator, MethodAsync, MethodAsyncGenerator}
	for i, want := range kinds {
		m, ok := cls.Elements[i].(*PrivateMethodElement)
		if !ok || m.Method.Kind != want {
			t.Errorf("element %d: expected private method kind %v, got %#v", i, want, cls.Elements[i])
		}
	}
}

// --- spec.md scenario 2: a private field and a private getter of the same
// --- name is a Value/Getter conflict, and must be detected. ---

func TestPrivateFieldAndGetterConflict(t *testing.T) {
	input := `
	class Foo {
		#x = 1;
		get #x() { return 1; }
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- A private constructor is always rejected, including for the
// --- get/set/generator/async spellings, not just the bare #constructor()
// --- form. ---

func TestPrivateConstructorRejectedForAccessorAndGeneratorSpellings(t *testing.T) {
	cases := []string{
		"class Foo { get #constructor() { return 1; } }",
		"class Foo { set #constructor(v) {} }",
		"class Foo { *#constructor() {} }",
		"class Foo { async #constructor() {} }",
	}
	for _, src := range cases {
		_, p := parseClassSource(t, src)
		expectErrors(t, p)
	}
}

func TestParseClassStaticBlock(t *testing.T) {
	input := `
	class Config {
		static #loaded;
		static {
			Config.#loaded = true;
		}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if len(cls.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(cls.Elements))
	}
	if _, ok := cls.Elements[1].(*StaticBlockElement); !ok {
		t.Errorf("expected second element to be a StaticBlockElement, got %T", cls.Elements[1])
	}
}

// --- Scenario: no heritage, direct super() in constructor is an error. ---

func TestConstructorDirectSuperWithoutHeritageIsError(t *testing.T) {
	input := `
	class Base {
		constructor() {
			super();
		}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Scenario: heritage present, direct super() in constructor is fine. ---

func TestConstructorDirectSuperWithHeritageIsFine(t *testing.T) {
	input := `
	class Derived extends Base {
		constructor() {
			super();
		}
	}`
	_, p := parseClassSource(t, input)
	expectNoErrors(t, p)
}

// --- Duplicate constructor is an error. ---

func TestDuplicateConstructorIsError(t *testing.T) {
	input := `
	class Foo {
		constructor() {}
		constructor() {}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Static named 'prototype' is forbidden. ---

func TestStaticPrototypeIsForbidden(t *testing.T) {
	input := `
	class Foo {
		static prototype() {}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- A field (not method) named 'constructor' is forbidden. ---

func TestFieldNamedConstructorIsForbidden(t *testing.T) {
	input := `
	class Foo {
		constructor = 1;
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- A private '#constructor' is always forbidden. ---

func TestPrivateConstructorIsForbidden(t *testing.T) {
	input := `
	class Foo {
		#constructor() {}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Duplicate private field declared twice is a conflict. ---

func TestDuplicatePrivateNameIsConflict(t *testing.T) {
	input := `
	class Foo {
		#x = 1;
		#x = 2;
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Private get/set pairing of matching static-ness upgrades cleanly. ---

func TestPrivateGetterSetterPairIsNotAConflict(t *testing.T) {
	input := `
	class Foo {
		get #x() { return 1; }
		set #x(v) {}
	}`
	_, p := parseClassSource(t, input)
	expectNoErrors(t, p)
}

// --- Static and non-static private names of the same spelling conflict. ---

func TestStaticAndInstancePrivateNamesOfSameSpellingConflict(t *testing.T) {
	input := `
	class Foo {
		#x = 1;
		static #x = 2;
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Forward reference to a private name declared later in the same body. ---

func TestForwardPrivateReferenceResolves(t *testing.T) {
	input := `
	class Foo {
		useIt() {
			return this.#later;
		}
		#later = 5;
	}`
	_, p := parseClassSource(t, input)
	expectNoErrors(t, p)
}

// --- An unresolved private reference (no matching declaration anywhere) errors. ---

func TestUnresolvedPrivateReferenceIsError(t *testing.T) {
	input := `
	class Foo {
		useIt() {
			return this.#missing;
		}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- 'arguments' may not appear in a field initializer. ---

func TestArgumentsInFieldInitializerIsError(t *testing.T) {
	input := `
	class Foo {
		x = arguments;
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- 'arguments' may not appear in a static block. ---

func TestArgumentsInStaticBlockIsError(t *testing.T) {
	input := `
	class Foo {
		static {
			let x = arguments;
		}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- A direct super() call is never valid inside a static block. ---

func TestDirectSuperInStaticBlockIsError(t *testing.T) {
	input := `
	class Foo extends Bar {
		static {
			super();
		}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Static block: a var name may not collide with a lexical name. ---

func TestStaticBlockLexicalVarCollisionIsError(t *testing.T) {
	input := `
	class Foo {
		static {
			let x = 1;
			var x = 2;
		}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Open Question: get/set followed by a non-name-start token is a
// --- field named 'get'/'set', not a getter/setter. ---

func TestGetSetAsFieldName(t *testing.T) {
	input := `
	class Foo {
		get = 1;
		set;
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if len(cls.Elements) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(cls.Elements))
	}
	for i, el := range cls.Elements {
		if _, ok := el.(*FieldElement); !ok {
			t.Errorf("element %d: expected FieldElement, got %T", i, el)
		}
	}
}

func TestGetSetAsMethod(t *testing.T) {
	input := `
	class Foo {
		get x() { return 1; }
		set x(v) {}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if len(cls.Elements) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(cls.Elements))
	}
	getter, ok := cls.Elements[0].(*MethodElement)
	if !ok || getter.Method.Kind != MethodGet {
		t.Fatalf("expected a getter, got %#v", cls.Elements[0])
	}
	setter, ok := cls.Elements[1].(*MethodElement)
	if !ok || setter.Method.Kind != MethodSet {
		t.Fatalf("expected a setter, got %#v", cls.Elements[1])
	}
}

// --- 'static' itself can be used as an ordinary method name. ---

func TestStaticAsMethodName(t *testing.T) {
	input := `
	class Foo {
		static() { return 1; }
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	method, ok := cls.Elements[0].(*MethodElement)
	if !ok || method.Static {
		t.Fatalf("expected a non-static method literally named 'static'")
	}
}

// --- Async/generator methods parse with the right MethodKind. ---

func TestAsyncAndGeneratorMethodKinds(t *testing.T) {
	input := `
	class Foo {
		*gen() {}
		async asyncMethod() {}
		async *asyncGen() {}
	}`
	prog, p := parseClassSource(t, input)
	expectNoErrors(t, p)
	cls := firstClass(t, prog)
	if len(cls.Elements) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(cls.Elements))
	}
	kinds := []MethodKind{MethodGenerator, MethodAsync, MethodAsyncGenerator}
	for i, want := range kinds {
		m, ok := cls.Elements[i].(*MethodElement)
		if !ok || m.Method.Kind != want {
			t.Errorf("element %d: expected kind %v, got %#v", i, want, cls.Elements[i])
		}
	}
}

// --- Getter must take no parameters; setter must take exactly one. ---

func TestGetterWithParametersIsError(t *testing.T) {
	input := `
	class Foo {
		get x(extra) { return 1; }
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

func TestSetterWithoutExactlyOneParameterIsError(t *testing.T) {
	input := `
	class Foo {
		set x() {}
	}`
	_, p := parseClassSource(t, input)
	expectErrors(t, p)
}

// --- Anonymous default-export class declaration (no binding identifier). ---

func TestAnonymousDefaultClassDeclaration(t *testing.T) {
	src := source.NewSourceFile("<test>", "", "class {}")
	l := lexer.NewLexerWithSource(src)
	in := NewInterner()
	p := New(l, src, in)
	cls := p.ParseClassDeclaration(true)
	expectNoErrors(t, p)
	if cls.HasName {
		t.Errorf("expected an anonymous default class")
	}
	if !cls.IsDefaultExport {
		t.Errorf("expected IsDefaultExport to be set")
	}
}
