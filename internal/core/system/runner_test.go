package system

import (
	"testing"
	"time"
)

type recSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s recSystem) Phase() Phase            { return s.phase }
func (s recSystem) Update(dt time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recSystem{"output", PhaseOutput, &log})
	r.Register(recSystem{"tick", PhaseUpdate, &log})
	r.Register(recSystem{"input-a", PhaseInput, &log})
	r.Register(recSystem{"input-b", PhaseInput, &log})

	r.Tick(50 * time.Millisecond)
	want := []string{"input-a", "input-b", "tick", "output"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
}
