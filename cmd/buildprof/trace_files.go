package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"buildprof/internal/project"
)

// Xcode drops these JSON files next to real timing data; they are never
// traces.
var skipSuffixes = []string{
	"-outputfilemap.json",
	"-buildrequest.json",
}

// gatherTraceFiles resolves each argument to a set of trace file paths.
// Files are taken as-is; directories are walked recursively for .json
// files that look like timing data.
func gatherTraceFiles(args []string, targetFilter []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !isTraceCandidate(path, targetFilter) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

func isTraceCandidate(path string, targetFilter []string) bool {
	base := strings.ToLower(filepath.Base(path))
	if !strings.HasSuffix(base, ".json") {
		return false
	}
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(base, suffix) {
			return false
		}
	}
	if len(targetFilter) == 0 {
		return true
	}
	target, _, _, ok := project.FromTracePath(path)
	if !ok {
		return false
	}
	return matchesTarget(target, targetFilter)
}

// matchesTarget ignores platform-suffixed variants, so a filter of
// "app" also matches the "app_ios" target.
func matchesTarget(target string, filter []string) bool {
	target = strings.ToLower(strings.TrimSpace(target))
	for _, want := range filter {
		want = strings.ToLower(strings.TrimSpace(want))
		if target == want || strings.HasPrefix(target, want+"_") {
			return true
		}
	}
	return false
}

// deriveMembership builds target membership by ripping target names out
// of Xcode-style trace paths. Paths that match no known layout are left
// out of every target but still analyzed.
func deriveMembership(paths []string) *project.Membership {
	byName := make(map[string]*project.Target)
	var order []string
	for _, path := range paths {
		name, platform, arch, ok := project.FromTracePath(path)
		if !ok {
			continue
		}
		t, exists := byName[name]
		if !exists {
			t = &project.Target{Name: name, Platform: platform, Arch: arch}
			byName[name] = t
			order = append(order, name)
		}
		t.Sources = append(t.Sources, path)
	}
	targets := make([]project.Target, 0, len(order))
	for _, name := range order {
		targets = append(targets, *byName[name])
	}
	return project.NewMembership(targets)
}
