package packet

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func TestDispatchRoutesByTypeAndState(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got struct {
		Name string `json:"name"`
	}
	var gotID uint64
	reg.Register("register_player", []SessionState{StateConnected}, func(sess any, env Envelope) {
		if err := env.Bind(&got); err != nil {
			t.Fatalf("Bind: %v", err)
		}
		gotID = env.ID
	})

	frame := []byte(`{"type":"register_player","id":7,"payload":{"name":"Alice"}}`)
	if _, err := reg.Dispatch(nil, StateConnected, frame); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got.Name != "Alice" || gotID != 7 {
		t.Fatalf("handler saw name=%q id=%d", got.Name, gotID)
	}

	env, err := reg.Dispatch(nil, StateInWorld, frame)
	if !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("err = %v, want ErrNotAllowed", err)
	}
	if env.ID != 7 {
		t.Fatalf("rejected envelope id = %d, want 7", env.ID)
	}
}

func TestDispatchRejectsUnknownAndMalformed(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if _, err := reg.Dispatch(nil, StateConnected, []byte(`{"type":"nope"}`)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if _, err := reg.Dispatch(nil, StateConnected, []byte(`{`)); err == nil {
		t.Fatalf("malformed frame accepted")
	}
	if _, err := reg.Dispatch(nil, StateConnected, []byte(`{"id":1}`)); err == nil {
		t.Fatalf("frame without type accepted")
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register("boom", []SessionState{StateInWorld}, func(any, Envelope) { panic("bad") })
	if _, err := reg.Dispatch(nil, StateInWorld, []byte(`{"type":"boom"}`)); !errors.Is(err, ErrHandlerPanic) {
		t.Fatalf("err = %v, want ErrHandlerPanic", err)
	}
}

type recordingTransport struct {
	events  int
	flushes int
}

func (tr *recordingTransport) Flush(time.Duration) bool       { tr.flushes++; return true }
func (tr *recordingTransport) Configure(sentry.ClientOptions) {}
func (tr *recordingTransport) SendEvent(*sentry.Event)        { tr.events++ }

func TestRecoveredPanicIsReportedWithoutFlushing(t *testing.T) {
	tr := &recordingTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: tr})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(prev) })

	reg := NewRegistry(zap.NewNop())
	reg.Register("boom", []SessionState{StateInWorld}, func(any, Envelope) { panic("bad") })
	if _, err := reg.Dispatch(nil, StateInWorld, []byte(`{"type":"boom"}`)); !errors.Is(err, ErrHandlerPanic) {
		t.Fatalf("err = %v, want ErrHandlerPanic", err)
	}
	if tr.events != 1 || tr.flushes != 0 {
		t.Fatalf("events = %d flushes = %d, want 1 and 0", tr.events, tr.flushes)
	}
}

func TestEncodeResult(t *testing.T) {
	data, err := EncodeResult("heal_player", 3, map[string]int{"health": 100}, nil)
	if err != nil {
		t.Fatalf("EncodeResult: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	if env.Type != TypeResult || env.ID != 3 {
		t.Fatalf("envelope = %+v", env)
	}
	var res struct {
		Reducer string         `json:"reducer"`
		OK      bool           `json:"ok"`
		Data    map[string]int `json:"data"`
	}
	if err := env.Bind(&res); err != nil {
		t.Fatal(err)
	}
	if !res.OK || res.Reducer != "heal_player" || res.Data["health"] != 100 {
		t.Fatalf("result = %+v", res)
	}

	data, _ = EncodeResult("heal_player", 4, "ignored", errors.New("player not found"))
	env = Envelope{}
	json.Unmarshal(data, &env)
	var failed Result
	env.Bind(&failed)
	if failed.OK || failed.Error != "player not found" || failed.Data != nil {
		t.Fatalf("failed result = %+v", failed)
	}
}
