package world

// InputState is one client input sample. Sequence is assigned by the client
// and increases monotonically within a player's stream.
type InputState struct {
	W          bool    `json:"w"`
	S          bool    `json:"s"`
	A          bool    `json:"a"`
	D          bool    `json:"d"`
	Space      bool    `json:"space"`
	Shift      bool    `json:"shift"`
	MouseX     float32 `json:"mouse_x"`
	MouseY     float32 `json:"mouse_y"`
	LeftClick  bool    `json:"left_click"`
	RightClick bool    `json:"right_click"`
	Sequence   uint32  `json:"sequence"`
}

// Moving reports whether any directional key is held.
func (in InputState) Moving() bool {
	return in.W || in.S || in.A || in.D
}

// Supersedes reports whether in is newer than the last applied sequence.
// Ties and regressions are stale.
func (in InputState) Supersedes(lastSeq uint32) bool {
	return in.Sequence > lastSeq
}
