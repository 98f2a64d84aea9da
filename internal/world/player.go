package world

import "time"

// Default vitals for a freshly registered player.
const (
	DefaultMaxHealth int32 = 100
	DefaultMaxMana   int32 = 100
)

// DefaultAnimation is the animation state of an idle player.
const DefaultAnimation = "Idle"

// Player is the authoritative record of a connected (Active) identity.
type Player struct {
	Identity     Identity
	Username     string
	Position     Vector3
	Rotation     Vector3
	Health       int32
	MaxHealth    int32
	Mana         int32
	MaxMana      int32
	IsMoving     bool
	IsRunning    bool
	LastInputSeq uint32
	Input        InputState
	LastUpdate   time.Time
	Presence     Presence
}

// Presence carries the aim/look/animation capability fields. They are stored
// with every player but only mutated when the capability is enabled.
type Presence struct {
	AimDirection   Vector3 `json:"aim_direction"`
	LookDirection  Vector3 `json:"look_direction"`
	IsAiming       bool    `json:"is_aiming"`
	IsScoped       bool    `json:"is_scoped"`
	AnimationState string  `json:"animation_state"`
	AnimationTime  float32 `json:"animation_time"`
}

// DefaultPresence faces +Z and idles.
func DefaultPresence() Presence {
	return Presence{
		AimDirection:   Vector3{Z: 1},
		LookDirection:  Vector3{Z: 1},
		AnimationState: DefaultAnimation,
	}
}

// LoggedOutPlayer is the reduced snapshot kept while an identity is offline.
type LoggedOutPlayer struct {
	Identity   Identity
	Username   string
	Position   Vector3
	Rotation   Vector3
	Health     int32
	MaxHealth  int32
	Mana       int32
	MaxMana    int32
	LogoutTime time.Time
}

// NewPlayer builds a player at the origin with full vitals and idle input.
func NewPlayer(id Identity, username string, now time.Time) Player {
	return Player{
		Identity:   id,
		Username:   username,
		Health:     DefaultMaxHealth,
		MaxHealth:  DefaultMaxHealth,
		Mana:       DefaultMaxMana,
		MaxMana:    DefaultMaxMana,
		LastUpdate: now,
		Presence:   DefaultPresence(),
	}
}

// LogOut snapshots the player for the LoggedOut partition.
func (p *Player) LogOut(now time.Time) LoggedOutPlayer {
	return LoggedOutPlayer{
		Identity:   p.Identity,
		Username:   p.Username,
		Position:   p.Position,
		Rotation:   p.Rotation,
		Health:     p.Health,
		MaxHealth:  p.MaxHealth,
		Mana:       p.Mana,
		MaxMana:    p.MaxMana,
		LogoutTime: now,
	}
}

// Restore rebuilds an Active player from a logged out snapshot. Position,
// rotation and vitals carry over; input, movement flags and the sequence
// counter start from idle.
func (lo *LoggedOutPlayer) Restore(username string, now time.Time) Player {
	p := NewPlayer(lo.Identity, username, now)
	p.Position = lo.Position
	p.Rotation = lo.Rotation
	p.Health = lo.Health
	p.MaxHealth = lo.MaxHealth
	p.Mana = lo.Mana
	p.MaxMana = lo.MaxMana
	return p
}
