package parser

// Symbol is an interned identifier; equality is by identity (spec.md §3:
// "Symbol — an interned identifier; equality is by identity").
type Symbol int

// Interner is a string<->Symbol table providing O(1) equality for
// identifiers (spec.md GLOSSARY: "Interner"), grounded on the teacher's
// string-table-free approach to identifiers (paserati compares Identifier
// literals directly); an explicit interner is introduced here because
// spec.md §6 names it as a required external collaborator with an
// `intern`/`resolve` contract.
type Interner struct {
	ids   map[string]Symbol
	names []string
}

// NewInterner creates an Interner with the well-known symbols from spec.md
// §3 ("Distinguished well-known symbols include constructor, prototype,
// static, get, set, default, plus keywords") pre-installed, so comparisons
// against them never need a fresh intern call.
func NewInterner() *Interner {
	in := &Interner{
		ids:   make(map[string]Symbol),
		names: nil,
	}
	SymConstructor = in.Intern("constructor")
	SymPrototype = in.Intern("prototype")
	SymStatic = in.Intern("static")
	SymGet = in.Intern("get")
	SymSet = in.Intern("set")
	SymAsync = in.Intern("async")
	SymDefault = in.Intern("default")
	SymArguments = in.Intern("arguments")
	SymPrivateConstructor = in.Intern("#constructor")
	return in
}

// Intern returns the Symbol for s, installing it if this is the first time
// it has been seen.
func (in *Interner) Intern(s string) Symbol {
	if sym, ok := in.ids[s]; ok {
		return sym
	}
	sym := Symbol(len(in.names))
	in.names = append(in.names, s)
	in.ids[s] = sym
	return sym
}

// Resolve returns the original string for a Symbol.
func (in *Interner) Resolve(sym Symbol) string {
	if int(sym) < 0 || int(sym) >= len(in.names) {
		return ""
	}
	return in.names[sym]
}

// Well-known symbols, populated by NewInterner. Declared as package-level
// vars (rather than constants) because their numeric value depends on
// intern order, which only NewInterner controls. NewInterner interns these
// names first and in a fixed order, so every Interner gives them the same
// values.
var (
	SymConstructor        Symbol
	SymPrototype           Symbol
	SymStatic              Symbol
	SymGet                 Symbol
	SymSet                 Symbol
	SymAsync               Symbol
	SymDefault             Symbol
	SymArguments           Symbol
	SymPrivateConstructor  Symbol
)
