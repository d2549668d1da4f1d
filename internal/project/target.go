package project

import (
	"path/filepath"
	"sort"
	"strings"
)

// Target is one named build output and the source files that feed it.
// Membership comes from external build metadata and is immutable once the
// run starts. A source file may belong to several targets; its cost then
// counts toward each of them.
type Target struct {
	Name     string
	Platform string
	Arch     string
	Sources  []string
}

// Membership maps target names to their targets.
type Membership struct {
	targets map[string]*Target
}

// NewMembership builds an immutable membership set. Later targets with a
// duplicate name fold their sources into the earlier one.
func NewMembership(targets []Target) *Membership {
	m := &Membership{targets: make(map[string]*Target, len(targets))}
	for i := range targets {
		t := targets[i]
		if existing, ok := m.targets[t.Name]; ok {
			existing.Sources = append(existing.Sources, t.Sources...)
			continue
		}
		m.targets[t.Name] = &t
	}
	for _, t := range m.targets {
		sort.Strings(t.Sources)
		t.Sources = dedupSorted(t.Sources)
	}
	return m
}

// Targets returns all targets sorted by name.
func (m *Membership) Targets() []Target {
	out := make([]Target, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of targets.
func (m *Membership) Len() int {
	return len(m.targets)
}

func dedupSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i > 0 && in[i-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}

const (
	buildDirSuffix     = ".build"
	sharedPrecompDir   = "SharedPrecompiledHeaders"
	unknownPlaceholder = "-"
)

// FromTracePath derives (target, platform, arch) from the directory layout
// Xcode uses for object files:
//
//	<...>/<platform>/<target>.build/<flavor>/<arch>/<file>.json
//
// Shared precompiled headers live outside any target directory and come
// back with placeholder platform/arch. ok is false when the layout does
// not match.
func FromTracePath(path string) (target, platform, arch string, ok bool) {
	working := filepath.Dir(path) // drop the trace filename
	arch = filepath.Base(working)
	working = filepath.Dir(working)
	working = filepath.Dir(working) // drop the build-flavor directory
	target = filepath.Base(working)
	working = filepath.Dir(working)

	switch {
	case strings.HasSuffix(target, buildDirSuffix):
		target = strings.TrimSuffix(target, buildDirSuffix)
		platform = filepath.Base(working)
	case target == sharedPrecompDir:
		platform = unknownPlaceholder
		arch = unknownPlaceholder
	default:
		return "", "", "", false
	}
	return target, platform, arch, true
}
