package event

import (
	"testing"

	"github.com/infinia/server/internal/world"
)

func TestEventsAreDeliveredNextTick(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e PlayerLoggedOut) { got = append(got, "out:"+e.Username) })
	Subscribe(b, func(e PlayerMoved) { got = append(got, "moved:"+e.Username) })

	Emit(b, PlayerMoved{Username: "a"})
	Emit(b, PlayerLoggedOut{Username: "b"})
	Emit(b, PlayerMoved{Username: "c"})

	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered before swap: %v", got)
	}
	if b.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", b.Pending())
	}

	b.SwapBuffers()
	b.DispatchAll()
	want := []string{"moved:a", "out:b", "moved:c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	b.SwapBuffers()
	got = got[:0]
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("events delivered twice: %v", got)
	}
}

func TestUnsubscribedTypesAreDropped(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(PlayerRestored) { calls++ })
	Emit(b, PlayerRegistered{Identity: world.IdentityFromToken("x")})
	b.SwapBuffers()
	b.DispatchAll()
	if calls != 0 {
		t.Fatalf("handler for another type called %d times", calls)
	}
}
