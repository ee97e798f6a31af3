package pytype

// Widen implements newtype-style literal widening (supplemented feature,
// grounded on `_examples/original_source/.../types/newtype.rs`): a
// literal type widens to its nominal class at an assignment boundary.
func Widen(s *Store, t TypeID) TypeID {
	typ := s.Type(t)
	switch typ.Kind {
	case KindLiteral:
		return s.Instance(NominalClassOf(typ.Literal))
	case KindUnion:
		ub := s.NewUnionBuilder()
		for _, m := range typ.Members {
			ub.Add(Widen(s, m))
		}
		return ub.Build()
	default:
		return t
	}
}

// WidenAt applies Widen to value only when dest is not itself a literal
// type, so an explicitly literal destination (e.g. a `Literal[1]`
// annotation) keeps the precise literal value instead of losing it at
// the boundary.
func WidenAt(s *Store, value, dest TypeID) TypeID {
	if s.Type(dest).Kind == KindLiteral {
		return value
	}
	return Widen(s, value)
}
