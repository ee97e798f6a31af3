package pytype

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestUnionAbsorbsNeverAndCollapsesSingleton(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	u := s.NewUnionBuilder().Add(intID).Add(Never).Build()
	qt.Assert(t, qt.Equals(u, intID))
}

func TestUnionDedupesByInternedId(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	strID := s.Instance("str")
	u1 := s.NewUnionBuilder().Add(intID).Add(strID).Add(intID).Build()
	u2 := s.NewUnionBuilder().Add(strID).Add(intID).Build()
	qt.Assert(t, qt.Equals(u1, u2))
}

func TestUnionPreservesDynamic(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	u := s.NewUnionBuilder().Add(intID).Add(Dynamic).Build()
	qt.Assert(t, qt.IsFalse(u == intID))
	qt.Assert(t, qt.IsFalse(u == Dynamic))
}

func TestIntersectionRejectsTypeAndItsNegation(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	got := s.NewIntersectionBuilder().AddPositive(intID).AddNegative(intID).Build()
	qt.Assert(t, qt.Equals(got, Never))
}

func TestIntersectionSimplifiesSubtype(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	lit := s.LiteralInt("1")
	got := s.NewIntersectionBuilder().AddPositive(intID).AddPositive(lit).Build()
	qt.Assert(t, qt.Equals(got, lit))
}

func TestSubtypeLiteralToNominal(t *testing.T) {
	s := NewStore()
	lit := s.LiteralInt("1")
	intID := s.Instance("int")
	qt.Assert(t, qt.IsTrue(IsSubtype(s, lit, intID)))
	qt.Assert(t, qt.IsFalse(IsSubtype(s, intID, lit)))
}

func TestEverythingSubtypesObject(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	qt.Assert(t, qt.IsTrue(IsSubtype(s, intID, Object)))
	qt.Assert(t, qt.IsTrue(IsSubtype(s, Never, intID)))
}

func TestAssignabilityWithDynamic(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	qt.Assert(t, qt.IsTrue(IsAssignable(s, Dynamic, intID)))
	qt.Assert(t, qt.IsTrue(IsAssignable(s, intID, Dynamic)))
}

func TestDisjointnessAcrossClasses(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	strID := s.Instance("str")
	qt.Assert(t, qt.IsTrue(IsDisjoint(s, intID, strID)))
	qt.Assert(t, qt.IsFalse(IsDisjoint(s, intID, intID)))
}

func TestNarrowIsNotNoneRemovesNoneFromUnion(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	none := s.Instance("NoneType")
	u := s.NewUnionBuilder().Add(intID).Add(none).Build()
	narrowed := Narrow(s, u, Predicate{Kind: PredicateIsNotNone})
	qt.Assert(t, qt.Equals(narrowed, intID))
}

func TestNarrowIsInstanceIntersectsAndPrunesDisjoint(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	strID := s.Instance("str")
	none := s.Instance("NoneType")
	u := s.NewUnionBuilder().Add(intID).Add(strID).Add(none).Build()
	narrowed := Narrow(s, u, Predicate{Kind: PredicateIsInstance, Class: "int"})
	qt.Assert(t, qt.Equals(narrowed, intID))
}

func TestWidenLiteralToNominalUnlessDestIsLiteral(t *testing.T) {
	s := NewStore()
	lit := s.LiteralInt("1")
	intID := s.Instance("int")
	qt.Assert(t, qt.Equals(WidenAt(s, lit, intID), intID))
	qt.Assert(t, qt.Equals(WidenAt(s, lit, lit), lit))
}

func TestResolveCallNotCallable(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	out := ResolveCall(s, intID, false, false, Dynamic)
	qt.Assert(t, qt.Equals(out.Kind, OutcomeNotCallable))
}

func TestResolveCallUnionAggregatesReturnAndFlagsNonCallable(t *testing.T) {
	s := NewStore()
	fn := s.Callable("f", nil, s.Instance("int"))
	intID := s.Instance("int")
	u := s.NewUnionBuilder().Add(fn).Add(intID).Build()
	out := ResolveCall(s, u, false, false, Dynamic)
	qt.Assert(t, qt.Equals(out.Kind, OutcomeUnion))
	qt.Assert(t, qt.IsTrue(out.HasNonCallableElement()))
}

func TestResolveCallRevealType(t *testing.T) {
	s := NewStore()
	intID := s.Instance("int")
	strID := s.Instance("str")
	out := ResolveCall(s, intID, false, true, strID)
	qt.Assert(t, qt.Equals(out.Kind, OutcomeRevealType))
	qt.Assert(t, qt.Equals(out.Revealed, strID))
}

func TestResolveCallPossiblyUnboundDunder(t *testing.T) {
	s := NewStore()
	fn := s.Callable("f", nil, s.Instance("int"))
	out := ResolveCall(s, fn, true, false, Dynamic)
	qt.Assert(t, qt.Equals(out.Kind, OutcomePossiblyUnboundDunderCall))
	qt.Assert(t, qt.IsFalse(out.Inner == nil))
}

func TestSubclassOfDynamicCollapsesToInstanceType(t *testing.T) {
	s := NewStore()
	got := s.SubclassOf(Dynamic)
	qt.Assert(t, qt.Equals(got, s.Instance("type")))
}
