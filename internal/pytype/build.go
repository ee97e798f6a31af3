package pytype

import "fmt"

// UnionBuilder incrementally assembles a union, absorbing Never,
// flattening nested unions, and deduping by interned id (spec §4.G:
// "Absorb Never in unions; collapse single-element unions; De-duplicate
// by interned id").
type UnionBuilder struct {
	store   *Store
	members []TypeID
}

// NewUnionBuilder starts a union over s's interned types.
func (s *Store) NewUnionBuilder() *UnionBuilder { return &UnionBuilder{store: s} }

// Add contributes t to the union under construction.
func (b *UnionBuilder) Add(t TypeID) *UnionBuilder {
	typ := b.store.Type(t)
	switch typ.Kind {
	case KindNever:
		return b
	case KindUnion:
		for _, m := range typ.Members {
			b.Add(m)
		}
		return b
	default:
		b.members = append(b.members, t)
		return b
	}
}

// Build interns and returns the accumulated union.
//
// Dynamic is never collapsed into other members (`T | Any` is preserved,
// not simplified to `T`) to retain the gradual-typing signal spec §4.G
// asks for.
func (b *UnionBuilder) Build() TypeID {
	if len(b.members) == 0 {
		return Never
	}
	members := dedupSorted(append([]TypeID(nil), b.members...))
	if len(members) == 1 {
		return members[0]
	}
	return b.store.intern_(unionKey(members), func() Type {
		return Type{Kind: KindUnion, Members: members}
	})
}

func unionKey(members []TypeID) string {
	return fmt.Sprintf("union:%v", members)
}

// IntersectionBuilder incrementally assembles an intersection with
// separate positive and negative operand sets (spec §4.G "reject T & ¬T
// → Never; simplify T & U when one is subtype of the other").
type IntersectionBuilder struct {
	store *Store
	pos   []TypeID
	neg   []TypeID
}

func (s *Store) NewIntersectionBuilder() *IntersectionBuilder {
	return &IntersectionBuilder{store: s}
}

func (b *IntersectionBuilder) AddPositive(t TypeID) *IntersectionBuilder {
	typ := b.store.Type(t)
	if typ.Kind == KindIntersection {
		for _, m := range typ.Members {
			b.AddPositive(m)
		}
		for _, n := range typ.Neg {
			b.AddNegative(n)
		}
		return b
	}
	b.pos = append(b.pos, t)
	return b
}

func (b *IntersectionBuilder) AddNegative(t TypeID) *IntersectionBuilder {
	b.neg = append(b.neg, t)
	return b
}

func (b *IntersectionBuilder) Build() TypeID {
	pos := dedupSorted(append([]TypeID(nil), b.pos...))
	neg := dedupSorted(append([]TypeID(nil), b.neg...))

	for _, p := range pos {
		for _, n := range neg {
			if p == n {
				return Never
			}
		}
	}
	for _, p := range pos {
		if p == Never {
			return Never
		}
	}

	pos = simplifyPositive(b.store, pos)

	if len(pos) == 0 && len(neg) == 0 {
		return Object
	}
	if len(pos) == 1 && len(neg) == 0 {
		return pos[0]
	}
	return b.store.intern_(intersectionKey(pos, neg), func() Type {
		return Type{Kind: KindIntersection, Members: pos, Neg: neg}
	})
}

// simplifyPositive drops any member that is a strict supertype of
// another member (T & U = U when U is a subtype of T).
func simplifyPositive(s *Store, members []TypeID) []TypeID {
	var out []TypeID
	for i, a := range members {
		redundant := false
		for j, b := range members {
			if i == j {
				continue
			}
			proper := IsSubtype(s, b, a) && !IsSubtype(s, a, b)
			tie := IsSubtype(s, b, a) && IsSubtype(s, a, b) && j < i
			if proper || tie {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, a)
		}
	}
	return dedupSorted(out)
}

func intersectionKey(pos, neg []TypeID) string {
	return fmt.Sprintf("isect:%v!%v", pos, neg)
}
