// Package config loads, caches and saves driving scenarios.
//
// Scenarios are JSON files in a config directory. Each one defines the
// layout (W wall, R road, S start, F finish, L lava, 1-9 lava holding that
// key, M mud, H health, G grass, . empty), health and damage settings, the
// camera radius of the car and the messages shown to the player.
//
// The default scenario is classic.json when present, otherwise the first
// valid scenario in the directory, otherwise the built-in engine.DefaultConfig.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	scenario, err := manager.LoadConfig("easy")
//	configs, err := manager.ListConfigs()
//
// Every scenario is validated on load, including a planner check that each
// key and an exit can be reached from the start.
package config
