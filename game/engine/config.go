package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// requiredLegend lists the legend entries every scenario must declare
var requiredLegend = map[string]string{
	"W": "wall",
	"R": "road",
	"S": "start",
	"F": "finish",
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate layout dimensions
	height := len(config.Layout)
	if height < MinGridSize || height > MaxGridSize {
		return fmt.Errorf("config validation: layout must have between %d and %d rows, got %d", MinGridSize, MaxGridSize, height)
	}
	width := len(config.Layout[0])
	if width < MinGridSize || width > MaxGridSize {
		return fmt.Errorf("config validation: layout rows must have between %d and %d characters, got %d", MinGridSize, MaxGridSize, width)
	}

	// Validate health settings
	if config.MaxHealth < MinHealth || config.MaxHealth > MaxHealthLimit {
		return fmt.Errorf("config validation: max_health must be between %d and %d, got %d", MinHealth, MaxHealthLimit, config.MaxHealth)
	}
	if config.StartingHealth < MinHealth || config.StartingHealth > config.MaxHealth {
		return fmt.Errorf("config validation: starting_health must be between %d and max_health (%d), got %d",
			MinHealth, config.MaxHealth, config.StartingHealth)
	}
	if config.LavaDamage < 0 {
		return fmt.Errorf("config validation: lava_damage cannot be negative, got %d", config.LavaDamage)
	}
	if config.HealAmount < 0 {
		return fmt.Errorf("config validation: heal_amount cannot be negative, got %d", config.HealAmount)
	}
	if config.ViewRadius != 0 && (config.ViewRadius < MinViewRadius || config.ViewRadius > MaxViewRadius) {
		return fmt.Errorf("config validation: view_radius must be between %d and %d, got %d", MinViewRadius, MaxViewRadius, config.ViewRadius)
	}
	if config.StartOrientation != "" && !config.StartOrientation.Valid() {
		return fmt.Errorf("config validation: start_orientation %q is not a compass heading", config.StartOrientation)
	}
	if config.MaxTicks < 0 {
		return fmt.Errorf("config validation: max_ticks cannot be negative, got %d", config.MaxTicks)
	}

	// Validate characters and count important cells
	starts, finishes := 0, 0
	for i, row := range config.Layout {
		if len(row) != width {
			return fmt.Errorf("config validation: row %d must have %d characters to match the first row, got %d",
				i+1, width, len(row))
		}
		for j, char := range row {
			if _, err := parseTile(char, config); err != nil {
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
			switch char {
			case 'S':
				starts++
			case 'F':
				finishes++
			}
		}
	}
	if starts != 1 {
		return fmt.Errorf("config validation: layout must contain exactly one start (S) cell, got %d", starts)
	}
	if finishes == 0 {
		return fmt.Errorf("config validation: layout must contain at least one finish (F) cell")
	}

	// Validate legend
	for key, expectedValue := range requiredLegend {
		if value, ok := config.Legend[key]; !ok || value != expectedValue {
			return fmt.Errorf("config validation: legend['%s'] must be '%s', got '%s'", key, expectedValue, value)
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.Destroyed == "" {
		return fmt.Errorf("config validation: messages.destroyed is required")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for key count")
	}
	if config.Messages.KeyCollected != "" && !strings.Contains(config.Messages.KeyCollected, "%d") {
		return fmt.Errorf("config validation: messages.key_collected must contain %%d for the key id")
	}
	if config.Messages.HealthStatus != "" && !strings.Contains(config.Messages.HealthStatus, "%d") {
		return fmt.Errorf("config validation: messages.health_status must contain %%d for health values")
	}

	return validateWinnability(config)
}

// validateWinnability checks with the damage averse planner that every key id and
// an exit can be reached from the start over the full map
func validateWinnability(config *GameConfig) error {
	grid := buildGrid(config)
	full := gridMap(grid)
	start := findTiles(grid, func(t world.Tile) bool { return t.Is(world.Start) })[0]
	policy := planner.DamageAverse{LavaDamage: config.LavaDamage}

	keys := map[int][]world.Coordinate{}
	for _, c := range findTiles(grid, func(t world.Tile) bool { return t.IsLava() && t.Key > 0 }) {
		key := full[c].Key
		keys[key] = append(keys[key], c)
	}
	for key, tiles := range keys {
		reachable := false
		for _, c := range tiles {
			if !planner.Search(full, start, c, policy).Empty() {
				reachable = true
				break
			}
		}
		if !reachable {
			return fmt.Errorf("config validation: key %d is unreachable from the start", key)
		}
	}

	for _, exit := range findTiles(grid, func(t world.Tile) bool { return t.Is(world.Finish) }) {
		if !planner.Search(full, start, exit, policy).Empty() {
			return nil
		}
	}
	return fmt.Errorf("config validation: no finish is reachable from the start")
}

// parseTile converts a layout character into a tile
func parseTile(char rune, config *GameConfig) (world.Tile, error) {
	switch {
	case char == 'W':
		return world.Tile{Type: world.Wall}, nil
	case char == 'R':
		return world.Tile{Type: world.Road}, nil
	case char == 'S':
		return world.Tile{Type: world.Start}, nil
	case char == 'F':
		return world.Tile{Type: world.Finish}, nil
	case char == '.':
		return world.Tile{Type: world.Empty}, nil
	case char == 'L':
		return world.LavaTile(0), nil
	case char >= '1' && char <= '9':
		return world.LavaTile(int(char - '0')), nil
	case char == 'M':
		return world.MudTile(), nil
	case char == 'H':
		return world.HealthTile(healAmount(config)), nil
	case char == 'G':
		return world.GrassTile(), nil
	}
	return world.Tile{}, fmt.Errorf("unknown layout character %q", char)
}

func healAmount(config *GameConfig) int {
	if config == nil || config.HealAmount == 0 {
		return DefaultHealAmount
	}
	return config.HealAmount
}

func lavaDamage(config *GameConfig) int {
	if config == nil || config.LavaDamage == 0 {
		return DefaultLavaDamage
	}
	return config.LavaDamage
}

func viewRadius(config *GameConfig) int {
	if config == nil || config.ViewRadius == 0 {
		return DefaultViewRadius
	}
	return config.ViewRadius
}

func startOrientation(config *GameConfig) world.Orientation {
	if config == nil || config.StartOrientation == "" {
		return world.East
	}
	return config.StartOrientation
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configName, err)
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configName, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}

	return &config, nil
}

// DefaultConfig returns the built-in scenario used when no config is available
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "default",
		Description: "Built-in scenario: grab the key behind the lava and leave through the exit",
		Layout: []string{
			"WWWWWWWWW",
			"WSRRRRRRW",
			"WRWWWWWRW",
			"WRRHRGR1W",
			"WWWRWWWLW",
			"WRRRRRRRF",
			"WWWWWWWWW",
		},
		Legend: map[string]string{
			"W": "wall", "R": "road", "S": "start", "F": "finish",
			"L": "lava", "H": "health", "G": "grass",
		},
		StartingHealth:   100,
		MaxHealth:        100,
		LavaDamage:       DefaultLavaDamage,
		HealAmount:       DefaultHealAmount,
		ViewRadius:       DefaultViewRadius,
		StartOrientation: world.East,
		Messages: Messages{
			Welcome:      "Welcome! Collect every key and reach the exit.",
			KeyCollected: "Key %d collected!",
			Lava:         "Ouch, lava! Health: %d",
			Healed:       "Healing... Health: %d",
			Mud:          "Stuck in the mud! Game Over!",
			Victory:      "Victory! Escaped with %d keys!",
			Locked:       "The exit is locked, %d keys missing",
			Destroyed:    "The car is destroyed! Game Over!",
			CantMove:     "Can't move there!",
			OutOfTicks:   "Out of time! Game Over!",
			HealthStatus: "Health: %d/%d",
		},
	}
}

// buildGrid converts the layout into tiles, row 0 being the northern edge
func buildGrid(config *GameConfig) [][]world.Tile {
	grid := make([][]world.Tile, len(config.Layout))
	for y, row := range config.Layout {
		grid[y] = make([]world.Tile, len(row))
		for x, char := range row {
			tile, err := parseTile(char, config)
			if err != nil {
				tile = world.Tile{Type: world.Empty}
			}
			grid[y][x] = tile
		}
	}
	return grid
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	grid := buildGrid(config)
	start := findTiles(grid, func(t world.Tile) bool { return t.Is(world.Start) })

	var pos world.Coordinate
	if len(start) > 0 {
		pos = start[0]
	}

	state := &GameState{
		Grid:              grid,
		Position:          pos,
		Orientation:       startOrientation(config),
		Health:            config.StartingHealth,
		MaxHealth:         config.MaxHealth,
		Keys:              []int{},
		TotalKeys:         CountKeys(grid),
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	state.LocalView = state.GenerateLocalView()
	return state
}
