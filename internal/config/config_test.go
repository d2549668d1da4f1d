package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
jobs = 4
top_n = 10

[history]
dir = "traces/history"
keep = 30
max_age_days = 90
tag = "nightly"

[tools]
enable = ["project-trace"]
disable = ["expensive-files"]

[[shorten]]
prefix = "/Users/ci/build"
replacement = "<build>"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Jobs != 4 || cfg.TopN != 10 {
		t.Fatalf("jobs/top_n = %d/%d, want 4/10", cfg.Jobs, cfg.TopN)
	}
	if cfg.History.Dir != "traces/history" || cfg.History.Keep != 30 {
		t.Fatalf("history = %+v", cfg.History)
	}
	if got := cfg.History.MaxAge(); got != 90*24*time.Hour {
		t.Fatalf("MaxAge = %v", got)
	}
	overrides := cfg.Tools.Overrides()
	if !overrides["project-trace"] || overrides["expensive-files"] {
		t.Fatalf("overrides = %v", overrides)
	}
	if len(cfg.Shorten) != 1 || cfg.Shorten[0].Replacement != "<build>" {
		t.Fatalf("shorten = %+v", cfg.Shorten)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown key", "jbos = 4\n"},
		{"negative jobs", "jobs = -1\n"},
		{"negative keep", "[history]\nkeep = -2\n"},
		{"empty shorten prefix", "[[shorten]]\nreplacement = \"x\"\n"},
		{"bad toml", "jobs = [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.body)
			if _, err := Load(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestDisableWinsOverEnable(t *testing.T) {
	tools := Tools{Enable: []string{"x"}, Disable: []string{"x"}}
	if tools.Overrides()["x"] {
		t.Fatal("disable should win when both lists name a tool")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "jobs = 2\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if filepath.Base(path) != ManifestName {
		t.Fatalf("Find returned %q", path)
	}

	cfg, manifest, err := Resolve(nested)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if manifest != path || cfg.Jobs != 2 {
		t.Fatalf("Resolve = %q jobs=%d", manifest, cfg.Jobs)
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg, manifest, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if manifest != "" {
		t.Fatalf("unexpected manifest %q", manifest)
	}
	if cfg.History.Dir != ".buildprof" {
		t.Fatalf("default history dir = %q", cfg.History.Dir)
	}
}
