package diag

// Tag is a small bitset of diagnostic tags, grounded on the rule-set
// bitflags pattern (_examples/original_source crates/ruff_linter/src/
// registry/rule_set.rs): a fixed, known vocabulary is cheaper as a bitset
// than a []string and supports O(1) membership/union.
type Tag uint32

const (
	TagUnused Tag = 1 << iota
	TagDeprecated
	TagUnnecessary
	TagPossiblyUnbound
	TagUnresolvedImport
	TagRevealType
	TagCycle
)

var tagNames = map[Tag]string{
	TagUnused:           "unused",
	TagDeprecated:       "deprecated",
	TagUnnecessary:      "unnecessary",
	TagPossiblyUnbound:  "possibly-unbound",
	TagUnresolvedImport: "unresolved-import",
	TagRevealType:       "reveal-type",
	TagCycle:            "cycle",
}

// Has reports whether t contains other.
func (t Tag) Has(other Tag) bool { return t&other != 0 }

// Names returns the set bits of t as their string names, in a fixed,
// deterministic order.
func (t Tag) Names() []string {
	var out []string
	for bit := Tag(1); bit != 0 && bit <= TagCycle; bit <<= 1 {
		if t.Has(bit) {
			out = append(out, tagNames[bit])
		}
	}
	return out
}
