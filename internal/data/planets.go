package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanetEntry names a planet and the radius of its initial chunk ring.
type PlanetEntry struct {
	Name   string `yaml:"name"`
	Radius int32  `yaml:"radius"`
}

type planetFile struct {
	Planets []PlanetEntry `yaml:"planets"`
}

// PlanetTable is the ordered bootstrap list generated at startup.
type PlanetTable struct {
	planets []PlanetEntry
}

// LoadPlanetTable loads planets.yaml.
func LoadPlanetTable(path string) (*PlanetTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read planet list: %w", err)
	}
	var f planetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse planet list: %w", err)
	}
	seen := make(map[string]bool, len(f.Planets))
	for _, p := range f.Planets {
		if p.Name == "" {
			return nil, fmt.Errorf("parse planet list: entry with empty name")
		}
		if p.Radius < 0 {
			return nil, fmt.Errorf("parse planet list: %s: negative radius %d", p.Name, p.Radius)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("parse planet list: duplicate planet %s", p.Name)
		}
		seen[p.Name] = true
	}
	return &PlanetTable{planets: f.Planets}, nil
}

// All returns the planets in file order.
func (t *PlanetTable) All() []PlanetEntry {
	return t.planets
}

// Count returns the total number of planets loaded.
func (t *PlanetTable) Count() int {
	return len(t.planets)
}
