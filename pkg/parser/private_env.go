package parser

import "esclass/pkg/errors"

// pendingPrivateRef is a private-identifier reference observed somewhere in
// a class body, recorded rather than resolved immediately: a method can
// reference a private name declared later in the same class (spec.md §9
// "validation happens at frame pop, not at reference").
type pendingPrivateRef struct {
	name Symbol
	pos  errors.Position
}

// privateNameFrame is one entry of the private-names environment stack
// (spec.md §4.6): each nested class body pushes a frame before parsing its
// ClassBody and pops it after, so private names declared by an outer class
// remain visible to a nested class's method bodies (PrivateIdentifier
// reference resolution climbs frames outward) while a nested class's own
// private declarations stay local to its own frame.
type privateNameFrame struct {
	kinds      map[Symbol]PrivateElementKind
	references []pendingPrivateRef
}

func newPrivateNameFrame() *privateNameFrame {
	return &privateNameFrame{kinds: make(map[Symbol]PrivateElementKind)}
}

// privateEnvironment is the Cursor-owned stack of privateNameFrame values
// (spec.md §6 "push_private_environment / pop_private_environment").
type privateEnvironment struct {
	frames []*privateNameFrame
}

func newPrivateEnvironment() *privateEnvironment {
	return &privateEnvironment{}
}

// push opens a new frame for a class body about to be parsed.
func (pe *privateEnvironment) push() {
	pe.frames = append(pe.frames, newPrivateNameFrame())
}

// pop closes the current frame and returns its declared names, so the
// caller can run the "every private reference resolved to a declaration"
// check (spec.md §3 invariant 9) against what the frame actually declared.
func (pe *privateEnvironment) pop() *privateNameFrame {
	n := len(pe.frames)
	top := pe.frames[n-1]
	pe.frames = pe.frames[:n-1]
	return top
}

func (pe *privateEnvironment) current() *privateNameFrame {
	return pe.frames[len(pe.frames)-1]
}

// declare inserts name into the current frame under the insertion/conflict
// table of spec.md §4.6:
//   - a name not yet declared in this frame installs at the given kind;
//   - a getter declared against an existing setter of the same static-ness
//     (or vice versa) upgrades the pair to the Value kind for that
//     static-ness, mirroring how an accessor pair shares one private slot;
//   - any other repeat declaration is a conflict (duplicate method/field,
//     or a static/non-static crossing — static and non-static never share
//     a slot even though they use the same PrivateIdentifier spelling).
func (pe *privateEnvironment) declare(name Symbol, kind PrivateElementKind, pos errors.Position) error {
	frame := pe.current()
	existing, ok := frame.kinds[name]
	if !ok {
		frame.kinds[name] = kind
		return nil
	}

	if upgraded, isPair := accessorPairUpgrade(existing, kind); isPair {
		frame.kinds[name] = upgraded
		return nil
	}

	return &errors.ClassParseError{
		SyntaxError: errors.SyntaxError{
			Position: pos,
			Msg:      "private name declared more than once in the same class",
		},
		ErrKind: errors.General,
	}
}

// accessorPairUpgrade reports whether existing and next are a getter/setter
// pair of matching static-ness, and if so the Value kind the pair upgrades
// to.
func accessorPairUpgrade(existing, next PrivateElementKind) (PrivateElementKind, bool) {
	switch {
	case existing == PrivateGetter && next == PrivateSetter,
		existing == PrivateSetter && next == PrivateGetter:
		return PrivateValue, true
	case existing == PrivateStaticGetter && next == PrivateStaticSetter,
		existing == PrivateStaticSetter && next == PrivateStaticGetter:
		return PrivateStaticValue, true
	default:
		return 0, false
	}
}

// recordReference notes a PrivateIdentifier use at pos against the
// innermost (currently open) frame; resolution is deferred to that frame's
// pop (see resolveOrForward), so a reference to a private name declared
// later in the same class body is accepted.
func (pe *privateEnvironment) recordReference(name Symbol, pos errors.Position) {
	if len(pe.frames) == 0 {
		return
	}
	top := pe.current()
	top.references = append(top.references, pendingPrivateRef{name: name, pos: pos})
}

// resolveOrForward is called after frame has been popped (spec.md §4.4:
// "after the closing `}` is matched ... pop ... validate that every
// forward-reference observed inside the body has been satisfied"). Any
// reference resolved by frame's own declarations is dropped; anything left
// unresolved is forwarded to the new top frame (the enclosing class), per
// spec.md §9 "a private reference that is unbound in the current frame is
// forwarded to the parent for later resolution"; if there is no enclosing
// frame, report reports it as unresolved.
func (pe *privateEnvironment) resolveOrForward(frame *privateNameFrame, report func(pendingPrivateRef)) {
	for _, ref := range frame.references {
		if _, ok := frame.kinds[ref.name]; ok {
			continue
		}
		if len(pe.frames) > 0 {
			parent := pe.current()
			parent.references = append(parent.references, ref)
			continue
		}
		report(ref)
	}
}
