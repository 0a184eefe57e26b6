package ident

// RefSet is an insertion-ordered set of refs.
type RefSet struct {
	seen  map[Ref]struct{}
	order []Ref
}

// NewRefSet returns a set seeded with refs, skipping absent values.
func NewRefSet(refs ...Ref) *RefSet {
	s := &RefSet{seen: make(map[Ref]struct{}, len(refs))}
	for _, r := range refs {
		s.Add(r)
	}
	return s
}

// Add inserts r and reports whether it was new. Absent refs are ignored.
func (s *RefSet) Add(r Ref) bool {
	if r.IsZero() {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[Ref]struct{})
	}
	if _, ok := s.seen[r]; ok {
		return false
	}
	s.seen[r] = struct{}{}
	s.order = append(s.order, r)
	return true
}

// Has reports membership.
func (s *RefSet) Has(r Ref) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[r]
	return ok
}

// Len returns the number of members.
func (s *RefSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Slice returns members in first-seen order. The result is a copy.
func (s *RefSet) Slice() []Ref {
	if s == nil {
		return nil
	}
	out := make([]Ref, len(s.order))
	copy(out, s.order)
	return out
}

// Union adds every member of other.
func (s *RefSet) Union(other *RefSet) {
	if other == nil {
		return
	}
	for _, r := range other.order {
		s.Add(r)
	}
}
