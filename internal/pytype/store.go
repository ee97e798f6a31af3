// Package pytype implements spec §4.G: the type lattice — an interned
// type store, union/intersection builders, subtype/assignability/
// disjointness relations, and narrowing. Grounded on internal/core/adt's
// value lattice (Vertex/BottomKind/disjunction machinery): like adt, a
// small set of primitive kinds (there: Bottom/Top; here: Never/Dynamic/
// Unbound) anchors a lattice of compound, structurally-interned shapes
// built through dedicated builders rather than raw struct literals.
package pytype

import "fmt"

// TypeID addresses an interned Type. Identity equality implies semantic
// equality for every Kind except Union/Intersection, which are built
// through UnionBuilder/IntersectionBuilder precisely so that equal sets
// of members always intern to the same id (spec §4.G "Unions and
// intersections are built through a UnionBuilder/IntersectionBuilder").
type TypeID int

// Kind tags the shape of a Type.
type Kind uint8

const (
	KindDynamic Kind = iota
	KindNever
	KindUnbound
	KindInstance
	KindLiteral
	KindSubclassOf
	KindCallable
	KindUnion
	KindIntersection
)

// Well-known singleton ids, pre-populated by NewStore.
const (
	Dynamic TypeID = 0
	Never   TypeID = 1
	Unbound TypeID = 2
	Object  TypeID = 3
)

// LiteralValueKind distinguishes the payload carried by a KindLiteral
// Type.
type LiteralValueKind uint8

const (
	LiteralInt LiteralValueKind = iota
	LiteralStr
	LiteralBytes
	LiteralBool
)

// LiteralValue is the exact value carried by a literal type (spec §4.G
// "literals subtype their nominal class"; exact value needed for literal
// equality and for newtype-style widening in widen.go).
type LiteralValue struct {
	Kind  LiteralValueKind
	Int   string // canonical decimal digits, as decoded by internal/lexer via apd.Decimal
	Str   string
	Bytes string
	Bool  bool
}

// CallableShape is the parameter/return shape of a KindCallable Type.
// Deliberately minimal: positional parameter types plus a return type.
// Keyword/variadic argument binding is an infer-layer concern (spec
// §4.H's call resolution consults this shape, it does not live here).
type CallableShape struct {
	Name   string
	Params []TypeID
	Return TypeID
}

// Type is one interned lattice element.
type Type struct {
	Kind Kind

	Class    string // KindInstance / KindSubclassOf: nominal class name
	Literal  LiteralValue
	Callable *CallableShape

	// Members holds Union operands (KindUnion) or the positive side of an
	// Intersection (KindIntersection); Neg holds the negated side (spec
	// §4.G "reject T & ¬T → Never"; §4.G narrowing "positive/negative
	// sides"). SubclassOf stores its operand class type as Members[0].
	Members []TypeID
	Neg     []TypeID
}

// Store is a TypeStore: a process-local pool of interned types (spec
// §4.G "A TypeStore holds interned types").
type Store struct {
	types  []Type
	intern map[string]TypeID
}

// NewStore creates a Store with the Dynamic/Never/Unbound/Object
// singletons pre-populated at their fixed ids.
func NewStore() *Store {
	s := &Store{intern: map[string]TypeID{}}
	s.types = append(s.types, Type{Kind: KindDynamic})               // Dynamic
	s.types = append(s.types, Type{Kind: KindNever})                 // Never
	s.types = append(s.types, Type{Kind: KindUnbound})                // Unbound
	s.types = append(s.types, Type{Kind: KindInstance, Class: "object"}) // Object
	return s
}

// Type returns the interned Type value for id.
func (s *Store) Type(id TypeID) Type { return s.types[id] }

func (s *Store) intern_(key string, build func() Type) TypeID {
	if id, ok := s.intern[key]; ok {
		return id
	}
	id := TypeID(len(s.types))
	s.types = append(s.types, build())
	s.intern[key] = id
	return id
}

// Instance returns the interned nominal instance type for class.
func (s *Store) Instance(class string) TypeID {
	if class == "object" {
		return Object
	}
	return s.intern_("inst:"+class, func() Type { return Type{Kind: KindInstance, Class: class} })
}

// SubclassOf returns `type[of]`. Per the Open Question decision recorded
// in DESIGN.md, SubclassOf(Dynamic) collapses to Instance("type") rather
// than a degenerate SubclassOf-of-Dynamic shape.
func (s *Store) SubclassOf(of TypeID) TypeID {
	if of == Dynamic {
		return s.Instance("type")
	}
	return s.intern_(fmt.Sprintf("subclassof:%d", of), func() Type {
		return Type{Kind: KindSubclassOf, Members: []TypeID{of}}
	})
}

// LiteralInt interns an int literal type from its canonical decimal digit
// string (see internal/lexer/numbers.go for how those digits are
// produced via apd.Decimal).
func (s *Store) LiteralInt(digits string) TypeID {
	return s.intern_("litint:"+digits, func() Type {
		return Type{Kind: KindLiteral, Literal: LiteralValue{Kind: LiteralInt, Int: digits}}
	})
}

func (s *Store) LiteralStr(v string) TypeID {
	return s.intern_("litstr:"+v, func() Type {
		return Type{Kind: KindLiteral, Literal: LiteralValue{Kind: LiteralStr, Str: v}}
	})
}

func (s *Store) LiteralBytes(v string) TypeID {
	return s.intern_("litbytes:"+v, func() Type {
		return Type{Kind: KindLiteral, Literal: LiteralValue{Kind: LiteralBytes, Bytes: v}}
	})
}

func (s *Store) LiteralBool(v bool) TypeID {
	key := "litbool:false"
	if v {
		key = "litbool:true"
	}
	return s.intern_(key, func() Type {
		return Type{Kind: KindLiteral, Literal: LiteralValue{Kind: LiteralBool, Bool: v}}
	})
}

// Callable interns a callable type from its shape.
func (s *Store) Callable(name string, params []TypeID, ret TypeID) TypeID {
	key := fmt.Sprintf("callable:%s:%v:%d", name, params, ret)
	return s.intern_(key, func() Type {
		return Type{Kind: KindCallable, Callable: &CallableShape{Name: name, Params: params, Return: ret}}
	})
}

// NominalClassOf returns the nominal class a literal value belongs to,
// used by subtype checks and by widen.go's literal-widening rule.
func NominalClassOf(v LiteralValue) string {
	switch v.Kind {
	case LiteralInt:
		return "int"
	case LiteralStr:
		return "str"
	case LiteralBytes:
		return "bytes"
	case LiteralBool:
		return "bool"
	default:
		return "object"
	}
}

func literalEqual(a, b LiteralValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case LiteralInt:
		return a.Int == b.Int
	case LiteralStr:
		return a.Str == b.Str
	case LiteralBytes:
		return a.Bytes == b.Bytes
	case LiteralBool:
		return a.Bool == b.Bool
	default:
		return false
	}
}

// String renders t for debug output and diagnostic messages.
func (s *Store) String(id TypeID) string {
	t := s.Type(id)
	switch t.Kind {
	case KindDynamic:
		return "Dynamic"
	case KindNever:
		return "Never"
	case KindUnbound:
		return "Unbound"
	case KindInstance:
		return t.Class
	case KindSubclassOf:
		return fmt.Sprintf("type[%s]", s.String(t.Members[0]))
	case KindLiteral:
		switch t.Literal.Kind {
		case LiteralInt:
			return "Literal[" + t.Literal.Int + "]"
		case LiteralStr:
			return fmt.Sprintf("Literal[%q]", t.Literal.Str)
		case LiteralBytes:
			return fmt.Sprintf("Literal[b%q]", t.Literal.Bytes)
		case LiteralBool:
			return fmt.Sprintf("Literal[%v]", t.Literal.Bool)
		}
		return "Literal"
	case KindCallable:
		return fmt.Sprintf("Callable[%s]", t.Callable.Name)
	case KindUnion:
		out := ""
		for i, m := range t.Members {
			if i > 0 {
				out += " | "
			}
			out += s.String(m)
		}
		return out
	case KindIntersection:
		out := ""
		for i, m := range t.Members {
			if i > 0 {
				out += " & "
			}
			out += s.String(m)
		}
		for _, n := range t.Neg {
			out += " & ~" + s.String(n)
		}
		return out
	default:
		return "?"
	}
}
