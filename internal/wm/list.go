package wm

// OrderedList is the generic ordered container named as C1 in the spec. The
// original implements it as an intrusive doubly-linked list with
// container_of; per §9's design note we replace that with a plain owning
// slice of ids, since Go has no container_of and the arenas in Model
// already own the entities. OrderedList is still the single data structure
// every "ordered sequence of X" field in §3 (Screen.tags, Tag.clients,
// Screen.dock, ...) is built from, so insertion order and Next/Prev walk
// semantics stay centralized in one place instead of being reimplemented
// per entity.
type OrderedList[T comparable] struct {
	items []T
}

func (l *OrderedList[T]) Len() int { return len(l.items) }

func (l *OrderedList[T]) Items() []T { return l.items }

func (l *OrderedList[T]) Append(v T) {
	l.items = append(l.items, v)
}

func (l *OrderedList[T]) IndexOf(v T) int {
	for i, it := range l.items {
		if it == v {
			return i
		}
	}
	return -1
}

func (l *OrderedList[T]) Contains(v T) bool { return l.IndexOf(v) >= 0 }

// Remove deletes the first occurrence of v, preserving order of the rest.
func (l *OrderedList[T]) Remove(v T) bool {
	i := l.IndexOf(v)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// Next returns the element after v, wrapping to the front, skipping
// elements for which skip returns true. Used by switch_window (§4.6) to
// walk past non-visible clients.
func (l *OrderedList[T]) Next(v T, skip func(T) bool) (T, bool) {
	return l.step(v, 1, skip)
}

// Prev is the mirror of Next.
func (l *OrderedList[T]) Prev(v T, skip func(T) bool) (T, bool) {
	return l.step(v, -1, skip)
}

func (l *OrderedList[T]) step(v T, dir int, skip func(T) bool) (T, bool) {
	var zero T
	n := len(l.items)
	if n == 0 {
		return zero, false
	}
	start := l.IndexOf(v)
	if start < 0 {
		return zero, false
	}
	i := start
	for steps := 0; steps < n; steps++ {
		i = ((i+dir)%n + n) % n
		if i == start {
			break
		}
		cand := l.items[i]
		if skip == nil || !skip(cand) {
			return cand, true
		}
	}
	return zero, false
}
