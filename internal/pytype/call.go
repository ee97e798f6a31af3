package pytype

// CallOutcomeKind enumerates spec §4.H's CallOutcome variants.
type CallOutcomeKind uint8

const (
	OutcomeCallable CallOutcomeKind = iota
	OutcomeNotCallable
	OutcomeRevealType
	OutcomeUnion
	OutcomePossiblyUnboundDunderCall
)

// CallOutcome is the result of resolving a call expression's target type
// (spec §4.H "Call resolution produces a CallOutcome").
type CallOutcome struct {
	Kind     CallOutcomeKind
	Return   TypeID        // Callable / RevealType / Union (aggregate)
	Revealed TypeID        // RevealType: the type reveal_type was called with
	Called   TypeID        // NotCallable / Union / PossiblyUnboundDunderCall
	Elements []CallOutcome // Union: one outcome per union member
	Inner    *CallOutcome  // PossiblyUnboundDunderCall: the outcome had __call__ been bound
}

// ResolveCall resolves the outcome of calling a value of type called.
// possiblyUnboundDunder models the supplemented PossiblyUnboundDunderCall
// diagnostic (original_source types/call.rs): the target's `__call__` is
// itself possibly unbound, e.g. conditionally deleted. revealType
// special-cases a literal `reveal_type(...)` call (spec §4.H); revealedArg
// is the type of reveal_type's own argument, the value the diagnostic
// reports, not called (which is reveal_type's own function type).
func ResolveCall(s *Store, called TypeID, possiblyUnboundDunder, revealType bool, revealedArg TypeID) CallOutcome {
	if revealType {
		return CallOutcome{Kind: OutcomeRevealType, Return: Dynamic, Revealed: revealedArg}
	}

	typ := s.Type(called)

	if typ.Kind == KindUnion {
		ub := s.NewUnionBuilder()
		elems := make([]CallOutcome, 0, len(typ.Members))
		for _, m := range typ.Members {
			o := ResolveCall(s, m, false, false, Dynamic)
			elems = append(elems, o)
			ub.Add(o.Return)
		}
		return CallOutcome{Kind: OutcomeUnion, Called: called, Elements: elems, Return: ub.Build()}
	}

	if typ.Kind == KindDynamic {
		return CallOutcome{Kind: OutcomeCallable, Return: Dynamic}
	}

	if typ.Kind != KindCallable {
		return CallOutcome{Kind: OutcomeNotCallable, Called: called, Return: Dynamic}
	}

	if possiblyUnboundDunder {
		inner := CallOutcome{Kind: OutcomeCallable, Return: typ.Callable.Return}
		return CallOutcome{
			Kind:   OutcomePossiblyUnboundDunderCall,
			Called: called,
			Inner:  &inner,
			Return: typ.Callable.Return,
		}
	}
	return CallOutcome{Kind: OutcomeCallable, Return: typ.Callable.Return}
}

// HasNonCallableElement reports whether a Union outcome has at least one
// element that is not callable, used to pick the aggregate-error shape
// spec §4.H describes ("UnionElement/UnionElements if some elements are
// not callable, or Type if none are").
func (o CallOutcome) HasNonCallableElement() bool {
	for _, e := range o.Elements {
		if e.Kind == OutcomeNotCallable {
			return true
		}
	}
	return false
}

// NonCallableElements returns the indices of Elements that are not
// callable.
func (o CallOutcome) NonCallableElements() []int {
	var out []int
	for i, e := range o.Elements {
		if e.Kind == OutcomeNotCallable {
			out = append(out, i)
		}
	}
	return out
}
