package diag

import (
	"fmt"
	"sort"
)

// Bag collects diagnostics for one run up to a fixed limit.
// Every recoverable problem lands here instead of being swallowed; the
// limit only guards against pathological traces flooding memory.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1024
	}
	return &Bag{items: make([]Diagnostic, 0, 16), max: max}
}

// Add appends a diagnostic, honoring the limit.
// Returns false if the diagnostic was not recorded.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Addf is shorthand for Add with a formatted message.
func (b *Bag) Addf(sev Severity, code Code, path, subject, format string, args ...any) bool {
	return b.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Path:     path,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Dropped reports how many diagnostics were discarded over the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors reports whether any diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the collected diagnostics.
// Callers must not modify the returned slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// CountByCode returns the number of diagnostics carrying the given code.
func (b *Bag) CountByCode(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

// Merge appends diagnostics from another bag, growing the limit if needed
// so nothing already collected is lost.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders diagnostics by: path, severity (desc), code, subject. The
// order is stable and deterministic so repeated runs over the same input
// report identically.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Subject < dj.Subject
	})
}

// Dedup removes exact repeats (same code, path, subject).
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%d:%s:%s", d.Code, d.Path, d.Subject)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}
