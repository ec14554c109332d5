package engine

import "github.com/wricardo/mcp-training/autopilot/game/world"

const (
	// Validation constants
	MinGridSize         = 3
	MaxGridSize         = 60
	MinHealth           = 1
	MaxHealthLimit      = 500
	MinViewRadius       = 1
	MaxViewRadius       = 10
	DefaultViewRadius   = 4
	DefaultLavaDamage   = 5
	DefaultHealAmount   = 5
	MaxBulkMoves        = 50
	UnreachableDistance = 999999
	WebSocketBufferSize = 256
)

// Commands accepted by Drive, matching the planner's relative directions
const (
	CommandForward  = "forward"
	CommandBackward = "backward"
	CommandLeft     = "left"
	CommandRight    = "right"
	CommandNone     = "none"
)

// Commands lists every command Drive accepts
var Commands = []string{CommandForward, CommandBackward, CommandLeft, CommandRight, CommandNone}

// Messages holds the player-facing texts of a scenario
type Messages struct {
	Welcome      string `json:"welcome"`
	KeyCollected string `json:"key_collected"` // %d key id
	Lava         string `json:"lava"`          // %d health left
	Healed       string `json:"healed"`        // %d health now
	Mud          string `json:"mud"`
	Victory      string `json:"victory"` // %d keys collected
	Locked       string `json:"locked"`  // %d keys missing
	Destroyed    string `json:"destroyed"`
	CantMove     string `json:"cant_move"`
	OutOfTicks   string `json:"out_of_ticks"`
	HealthStatus string `json:"health_status"` // %d/%d health
}

// GameConfig represents the scenario configuration from JSON.
// Layout row 0 is the northern edge of the map.
type GameConfig struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Layout           []string          `json:"layout"`
	Legend           map[string]string `json:"legend"`
	StartingHealth   int               `json:"starting_health"`
	MaxHealth        int               `json:"max_health"`
	LavaDamage       int               `json:"lava_damage"`
	HealAmount       int               `json:"heal_amount"`
	ViewRadius       int               `json:"view_radius"`
	StartOrientation world.Orientation `json:"start_orientation"`
	MaxTicks         int               `json:"max_ticks,omitempty"`
	Messages         Messages          `json:"messages"`
}

// VisibleTile is a tile with its absolute position
type VisibleTile struct {
	X    int        `json:"x"`
	Y    int        `json:"y"`
	Tile world.Tile `json:"tile"`
}

// GameState represents the complete game state
type GameState struct {
	Grid        [][]world.Tile     `json:"grid"` // row 0 is the northern edge
	Position    world.Coordinate   `json:"position"`
	Orientation world.Orientation  `json:"orientation"`
	Velocity    int                `json:"velocity"` // 1 after a forward move, -1 after reversing, 0 when stopped
	Health      int                `json:"health"`
	MaxHealth   int                `json:"max_health"`
	Keys        []int              `json:"keys"`
	TotalKeys   int                `json:"total_keys"`
	Ticks       int                `json:"ticks"`
	Message     string             `json:"message"`
	GameOver    bool               `json:"game_over"`
	Victory     bool               `json:"victory"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`
	LocalView   []VisibleTile      `json:"local_view,omitempty"` // 8 surrounding tiles

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	HealthRisk string `json:"health_risk,omitempty"`
}

// MoveHistoryEntry represents a single command in the game history
type MoveHistoryEntry struct {
	Action          string            `json:"action"`
	FromPosition    world.Coordinate  `json:"from_position"`
	ToPosition      world.Coordinate  `json:"to_position"`
	FromOrientation world.Orientation `json:"from_orientation"`
	ToOrientation   world.Orientation `json:"to_orientation"`
	Health          int               `json:"health"`
	Timestamp       int64             `json:"timestamp"`
	Success         bool              `json:"success"`
	MoveNumber      int               `json:"move_number"`
	Autopilot       bool              `json:"autopilot,omitempty"`
}
