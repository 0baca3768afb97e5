// Package group partitions records by a derived key and picks one winner per
// group using an ordered comparator.
package group

// Compare orders two records; a negative result means a is the better record.
type Compare[T any] func(a, b T) int

// Chain combines comparators in priority order. The first one that returns a
// non-zero result decides.
func Chain[T any](cmps ...Compare[T]) Compare[T] {
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Winner is the selected record of a group together with the whole group.
type Winner[T any] struct {
	Record   T
	Count    int
	Siblings []T // every member of the group, in input order
}

// Selection holds one Winner per key. Keys keep the order in which they were
// first seen in the input.
type Selection[K comparable, T any] struct {
	keys  []K
	byKey map[K]*Winner[T]
}

// Select groups records by key and keeps the best record of each group
// according to cmp. Records comparing equal keep the earlier one, which is
// the same result a stable sort followed by taking the head would give.
func Select[T any, K comparable](records []T, key func(T) K, cmp Compare[T]) *Selection[K, T] {
	s := &Selection[K, T]{byKey: make(map[K]*Winner[T], len(records))}
	for _, r := range records {
		k := key(r)
		w, ok := s.byKey[k]
		if !ok {
			s.keys = append(s.keys, k)
			s.byKey[k] = &Winner[T]{Record: r, Count: 1, Siblings: []T{r}}
			continue
		}
		w.Count++
		w.Siblings = append(w.Siblings, r)
		if cmp(r, w.Record) < 0 {
			w.Record = r
		}
	}
	return s
}

func (s *Selection[K, T]) Len() int { return len(s.keys) }

// Keys returns the group keys in first-seen order.
func (s *Selection[K, T]) Keys() []K {
	out := make([]K, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Selection[K, T]) Get(k K) (Winner[T], bool) {
	w, ok := s.byKey[k]
	if !ok {
		return Winner[T]{}, false
	}
	return *w, true
}

// Winners returns every group's winner in key order.
func (s *Selection[K, T]) Winners() []Winner[T] {
	out := make([]Winner[T], 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, *s.byKey[k])
	}
	return out
}

// Records returns just the winning records in key order.
func (s *Selection[K, T]) Records() []T {
	out := make([]T, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.byKey[k].Record)
	}
	return out
}
