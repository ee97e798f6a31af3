package pytype

// PredicateKind enumerates the narrowing predicates spec §4.G names: "is
// None, is not None, isinstance(X), not isinstance(X), truthiness,
// equality against a literal".
type PredicateKind uint8

const (
	PredicateIsNone PredicateKind = iota
	PredicateIsNotNone
	PredicateIsInstance
	PredicateNotIsInstance
	PredicateTruthy
	PredicateFalsy
	PredicateEqualsLiteral
)

// Predicate is a single narrowing test applied to a type.
type Predicate struct {
	Kind    PredicateKind
	Class   string // PredicateIsInstance / PredicateNotIsInstance
	Literal TypeID // PredicateEqualsLiteral
}

// Narrow returns the refined type after applying p to t (spec §4.G
// "narrow(type, predicate) returns a refined type ... composes with
// intersections (positive/negative sides)").
func Narrow(s *Store, t TypeID, p Predicate) TypeID {
	none := s.Instance("NoneType")
	switch p.Kind {
	case PredicateIsNone:
		if IsDisjoint(s, t, none) {
			return Never
		}
		return none
	case PredicateIsNotNone:
		return removeMember(s, t, none)
	case PredicateIsInstance:
		target := s.Instance(p.Class)
		if IsDisjoint(s, t, target) {
			return Never
		}
		return s.NewIntersectionBuilder().AddPositive(t).AddPositive(target).Build()
	case PredicateNotIsInstance:
		target := s.Instance(p.Class)
		return removeMember(s, t, target)
	case PredicateEqualsLiteral:
		if IsDisjoint(s, t, p.Literal) {
			return Never
		}
		return p.Literal
	case PredicateTruthy, PredicateFalsy:
		// No literal-truthiness modeling (would need per-class __bool__
		// awareness); narrowing on truthiness is a no-op simplification,
		// documented in DESIGN.md.
		return t
	default:
		return t
	}
}

// removeMember narrows t by excluding exclude from it: distributes over
// unions, collapses to Never when t itself is a (non-union) subtype of
// exclude.
func removeMember(s *Store, t, exclude TypeID) TypeID {
	typ := s.Type(t)
	if typ.Kind != KindUnion {
		if IsSubtype(s, t, exclude) {
			return Never
		}
		return t
	}
	ub := s.NewUnionBuilder()
	for _, m := range typ.Members {
		if !IsSubtype(s, m, exclude) {
			ub.Add(m)
		}
	}
	return ub.Build()
}
