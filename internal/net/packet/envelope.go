package packet

import (
	"encoding/json"
	"fmt"
)

// Envelope is one JSON frame on the wire in either direction.
type Envelope struct {
	Type    string          `json:"type"`
	ID      uint64          `json:"id,omitempty"` // request id echoed in the result
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TypeResult answers a client request.
const TypeResult = "result"

// Result is the payload of a TypeResult frame.
type Result struct {
	Reducer string `json:"reducer"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Decode parses a client frame. The type field is required.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// Bind unmarshals the payload into v. An absent payload leaves v untouched.
func (e Envelope) Bind(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Encode builds a server frame.
func Encode(typ string, id uint64, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return json.Marshal(Envelope{Type: typ, ID: id, Payload: raw})
}

// EncodeResult builds the reply to request id. err, if set, marks it failed.
func EncodeResult(reducer string, id uint64, data any, err error) ([]byte, error) {
	res := Result{Reducer: reducer, OK: err == nil, Data: data}
	if err != nil {
		res.Error = err.Error()
		res.Data = nil
	}
	return Encode(TypeResult, id, res)
}
