package aggregate

import "sort"

// TopN keeps the n best items seen so far under a ranking function,
// without sorting the full candidate set. The candidate set (every header
// across every file) can be large while n stays small, so this holds a
// bounded min-heap whose root is the weakest kept item. This is a
// performance contract only; a full sort produces the same result.
type TopN[T any] struct {
	n     int
	less  func(a, b T) bool // true when a ranks ahead of b
	items []T
}

// NewTopN creates a bounded selector. less reports whether a outranks b
// and must define a total order for the result to be stable.
func NewTopN[T any](n int, less func(a, b T) bool) *TopN[T] {
	if n < 0 {
		n = 0
	}
	return &TopN[T]{n: n, less: less, items: make([]T, 0, n)}
}

// Push offers an item for selection.
func (t *TopN[T]) Push(v T) {
	if t.n == 0 {
		return
	}
	if len(t.items) < t.n {
		t.items = append(t.items, v)
		t.siftUp(len(t.items) - 1)
		return
	}
	// Root is the weakest kept item; replace it only if v outranks it.
	if t.less(v, t.items[0]) {
		t.items[0] = v
		t.siftDown(0)
	}
}

// Items returns the kept items, best first.
func (t *TopN[T]) Items() []T {
	out := make([]T, len(t.items))
	copy(out, t.items)
	sort.SliceStable(out, func(i, j int) bool { return t.less(out[i], out[j]) })
	return out
}

// weaker orders the internal heap: the root must be the weakest item.
func (t *TopN[T]) weaker(i, j int) bool {
	return t.less(t.items[j], t.items[i])
}

func (t *TopN[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !t.weaker(i, parent) {
			break
		}
		t.items[i], t.items[parent] = t.items[parent], t.items[i]
		i = parent
	}
}

func (t *TopN[T]) siftDown(i int) {
	for {
		l, r := 2*i+1, 2*i+2
		weakest := i
		if l < len(t.items) && t.weaker(l, weakest) {
			weakest = l
		}
		if r < len(t.items) && t.weaker(r, weakest) {
			weakest = r
		}
		if weakest == i {
			return
		}
		t.items[i], t.items[weakest] = t.items[weakest], t.items[i]
		i = weakest
	}
}
