package project

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// targetSpec is one [[target]] block in a targets.toml manifest.
type targetSpec struct {
	Name     string   `toml:"name"`
	Platform string   `toml:"platform"`
	Arch     string   `toml:"arch"`
	Sources  []string `toml:"sources"`
}

type manifest struct {
	Targets []targetSpec `toml:"target"`
}

// LoadMembership reads target membership from a TOML manifest:
//
//	[[target]]
//	name = "Core"
//	sources = ["src/a.cpp", "src/b.cpp"]
func LoadMembership(path string) (*Membership, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("load targets manifest %s: %w", path, err)
	}
	targets := make([]Target, 0, len(m.Targets))
	for _, spec := range m.Targets {
		if spec.Name == "" {
			return nil, fmt.Errorf("load targets manifest %s: target with empty name", path)
		}
		targets = append(targets, Target{
			Name:     spec.Name,
			Platform: spec.Platform,
			Arch:     spec.Arch,
			Sources:  spec.Sources,
		})
	}
	return NewMembership(targets), nil
}
