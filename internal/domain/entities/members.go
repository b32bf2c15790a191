package entities

import "slices"

// MemberList is an ordered set of member snowflakes, in joining order.
type MemberList []string

func (l MemberList) Has(id string) bool {
	return slices.Contains(l, id)
}

// Add appends id unless it is already present.
func (l MemberList) Add(id string) (MemberList, bool) {
	if id == "" || l.Has(id) {
		return l, false
	}
	return append(l, id), true
}

// Remove drops every occurrence of id.
func (l MemberList) Remove(id string) (MemberList, bool) {
	if !l.Has(id) {
		return l, false
	}
	out := make(MemberList, 0, len(l)-1)
	for _, m := range l {
		if m != id {
			out = append(out, m)
		}
	}
	return out, true
}

func (l MemberList) Clone() MemberList {
	if l == nil {
		return MemberList{}
	}
	return slices.Clone(l)
}
