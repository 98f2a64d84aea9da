package event

import "github.com/infinia/server/internal/world"

// PlayerRegistered is emitted when an identity becomes Active through
// register_player. Restored is set when a LoggedOut snapshot was reused.
type PlayerRegistered struct {
	Identity world.Identity
	Username string
	Position world.Vector3
	Restored bool
}

// PlayerRestored is emitted when a reconnect moves LoggedOut back to Active.
type PlayerRestored struct {
	Identity world.Identity
	Username string
	Position world.Vector3
}

// PlayerLoggedOut is emitted when a disconnect moves Active to LoggedOut.
type PlayerLoggedOut struct {
	Identity world.Identity
	Username string
}

// PlayerMoved is emitted for accepted input whose movement or turn crossed
// the significance thresholds.
type PlayerMoved struct {
	Identity  world.Identity
	Username  string
	From      world.Vector3
	Position  world.Vector3
	Rotation  world.Vector3
	Sequence  uint32
	IsMoving  bool
	IsRunning bool
}
