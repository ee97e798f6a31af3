package pytype

// IsSubtype implements spec §4.G's Subtype relation: reflexive; Never
// subtypes everything; everything subtypes object; union on the left
// distributes; intersection on the right distributes; literals subtype
// their nominal class.
//
// Class nominal subtyping has no MRO/base-class walk (that needs a
// resolved class hierarchy from internal/semindex + internal/resolver,
// out of this package's scope): two KindInstance types are related only
// by name equality, plus the universal `object` supertype.
func IsSubtype(s *Store, a, b TypeID) bool {
	if a == b {
		return true
	}
	if a == Never {
		return true
	}
	if b == Object && a != Dynamic {
		return true
	}

	ta := s.Type(a)
	if ta.Kind == KindUnion {
		for _, m := range ta.Members {
			if !IsSubtype(s, m, b) {
				return false
			}
		}
		return true
	}

	tb := s.Type(b)
	switch tb.Kind {
	case KindIntersection:
		for _, m := range tb.Members {
			if !IsSubtype(s, a, m) {
				return false
			}
		}
		for _, n := range tb.Neg {
			if IsSubtype(s, a, n) {
				return false
			}
		}
		return true
	case KindUnion:
		for _, m := range tb.Members {
			if IsSubtype(s, a, m) {
				return true
			}
		}
		return false
	}

	if ta.Kind == KindLiteral && tb.Kind == KindInstance {
		return NominalClassOf(ta.Literal) == tb.Class
	}
	if ta.Kind == KindInstance && tb.Kind == KindInstance {
		return ta.Class == tb.Class
	}
	if ta.Kind == KindSubclassOf && tb.Kind == KindSubclassOf {
		return IsSubtype(s, ta.Members[0], tb.Members[0])
	}
	if ta.Kind == KindLiteral && tb.Kind == KindLiteral {
		return literalEqual(ta.Literal, tb.Literal)
	}
	return false
}

// IsAssignable implements spec §4.G's Assignability relation: like
// Subtype but Dynamic (Any/Unknown) is assignable to and from everything.
func IsAssignable(s *Store, from, to TypeID) bool {
	if from == Dynamic || to == Dynamic {
		return true
	}
	if ft := s.Type(from); ft.Kind == KindUnion {
		for _, m := range ft.Members {
			if !IsAssignable(s, m, to) {
				return false
			}
		}
		return true
	}
	if tt := s.Type(to); tt.Kind == KindUnion {
		for _, m := range tt.Members {
			if IsAssignable(s, from, m) {
				return true
			}
		}
		return false
	}
	return IsSubtype(s, from, to)
}

// IsDisjoint implements spec §4.G's Disjointness relation, used to prune
// unions during narrowing: two types are disjoint if their value sets
// cannot intersect. Dynamic is never disjoint from anything (a gradual
// type's value set is not statically known).
func IsDisjoint(s *Store, a, b TypeID) bool {
	if a == Dynamic || b == Dynamic {
		return false
	}
	if a == Never || b == Never {
		return true
	}

	ta := s.Type(a)
	if ta.Kind == KindUnion {
		for _, m := range ta.Members {
			if !IsDisjoint(s, m, b) {
				return false
			}
		}
		return true
	}
	tb := s.Type(b)
	if tb.Kind == KindUnion {
		for _, m := range tb.Members {
			if !IsDisjoint(s, a, m) {
				return false
			}
		}
		return true
	}

	if a == b {
		return false
	}
	if ta.Kind == KindInstance && tb.Kind == KindInstance {
		return ta.Class != tb.Class
	}
	if ta.Kind == KindLiteral && tb.Kind == KindLiteral {
		return !literalEqual(ta.Literal, tb.Literal)
	}
	if ta.Kind == KindLiteral && tb.Kind == KindInstance {
		return NominalClassOf(ta.Literal) != tb.Class
	}
	if ta.Kind == KindInstance && tb.Kind == KindLiteral {
		return NominalClassOf(tb.Literal) != ta.Class
	}
	return false
}
