package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planets.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlanetTable(t *testing.T) {
	tbl, err := LoadPlanetTable(writeYAML(t, "planets:\n  - name: earth\n    radius: 2\n  - name: moon\n    radius: 0\n"))
	if err != nil {
		t.Fatalf("LoadPlanetTable: %v", err)
	}
	if tbl.Count() != 2 {
		t.Fatalf("count = %d, want 2", tbl.Count())
	}
	if got := tbl.All()[0]; got.Name != "earth" || got.Radius != 2 {
		t.Fatalf("first = %+v, want earth/2", got)
	}
}

func TestLoadPlanetTableRejectsBadEntries(t *testing.T) {
	for name, body := range map[string]string{
		"empty name": "planets:\n  - radius: 1\n",
		"negative":   "planets:\n  - name: a\n    radius: -1\n",
		"duplicate":  "planets:\n  - name: a\n  - name: a\n",
		"syntax":     "planets: [",
	} {
		if _, err := LoadPlanetTable(writeYAML(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestShippedPlanetList(t *testing.T) {
	tbl, err := LoadPlanetTable(filepath.Join("..", "..", "data", "yaml", "planets.yaml"))
	if err != nil {
		t.Fatalf("LoadPlanetTable: %v", err)
	}
	if tbl.Count() == 0 {
		t.Fatalf("shipped planet list is empty")
	}
}
