package pytype

import "github.com/mpvl/unique"

// idSlice adapts a []TypeID to mpvl/unique's sort-then-truncate contract:
// data is sorted, adjacent duplicates are moved past the unique prefix,
// and Truncate is called with the count of unique elements so the
// backing slice (held by pointer) reflects the reduced length after
// Sort returns.
type idSlice struct{ ids *[]TypeID }

func (s idSlice) Len() int           { return len(*s.ids) }
func (s idSlice) Less(i, j int) bool { return (*s.ids)[i] < (*s.ids)[j] }
func (s idSlice) Swap(i, j int)      { (*s.ids)[i], (*s.ids)[j] = (*s.ids)[j], (*s.ids)[i] }
func (s idSlice) Truncate(n int)     { *s.ids = (*s.ids)[:n] }

// dedupSorted sorts and dedupes ids in deterministic ascending-id order,
// never hash-iteration order, so union members print and compare the
// same way across runs regardless of map iteration or pointer identity.
func dedupSorted(ids []TypeID) []TypeID {
	unique.Sort(idSlice{ids: &ids})
	return ids
}
