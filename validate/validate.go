// Command validate checks scenario JSON files. It reports:
//   - JSON structure and the engine's scenario validation (grid, legend,
//     health settings, messages)
//   - Winnability: every key and an exit reachable from the start
//   - The cheapest damage to reach each key and exit, with a warning when
//     that alone would destroy the car
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/autopilot/game/autopilot"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// ValidationResult captures the outcome of validating a single file
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// validateConfig loads and validates a single scenario file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	eng, err := engine.NewEngine(&config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	state := eng.GetState()
	m := state.Map()

	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", config.Name),
		fmt.Sprintf("Grid: %dx%d", len(config.Layout[0]), len(config.Layout)),
		fmt.Sprintf("Start: %v facing %s", state.Position, state.Orientation),
		fmt.Sprintf("Keys: %d", state.TotalKeys),
		fmt.Sprintf("Health tiles: %d", len(autopilot.HealthTiles(m))),
		fmt.Sprintf("Health: %d/%d, lava damage %d", state.Health, state.MaxHealth, eng.LavaDamage()),
	)

	info, warnings := damageReport(m, state, eng.LavaDamage())
	result.Info = append(result.Info, info...)
	result.Warnings = warnings
	return result
}

// damageReport gives the least damage needed to reach every key and exit from
// the start. Reaching a target alone must not destroy the car unless a health
// tile can make up for it.
func damageReport(m world.Map, state *engine.GameState, lavaDamage int) (info, warnings []string) {
	policy := planner.DamageAverse{LavaDamage: lavaDamage}
	healable := len(autopilot.HealthTiles(m)) > 0

	check := func(label string, targets []world.Coordinate) {
		best := -1
		for _, c := range targets {
			path := planner.Search(m, state.Position, c, policy)
			if path.Empty() {
				continue
			}
			if best < 0 || path.Damage < best {
				best = path.Damage
			}
		}
		if best < 0 {
			return
		}
		info = append(info, fmt.Sprintf("%s: least damage %d", label, best))
		if best >= state.Health && !healable {
			warnings = append(warnings, fmt.Sprintf("%s costs %d damage with %d health and no health tiles", label, best, state.Health))
		}
	}

	byKey := map[int][]world.Coordinate{}
	var ids []int
	for _, c := range autopilot.UncollectedKeys(m, world.NewKeySet()) {
		tile, _ := m.Tile(c)
		if _, seen := byKey[tile.Key]; !seen {
			ids = append(ids, tile.Key)
		}
		byKey[tile.Key] = append(byKey[tile.Key], c)
	}
	for _, id := range ids {
		check(fmt.Sprintf("Key %d", id), byKey[id])
	}
	check("Exit", autopilot.Exits(m))

	return info, warnings
}

func printResult(out io.Writer, result ValidationResult) {
	fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

	if !result.Valid {
		fmt.Fprintln(out, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(out, "  ❌ "+err)
		}
		return
	}

	fmt.Fprintln(out, "✅ VALID")
	for _, info := range result.Info {
		fmt.Fprintln(out, "  ✓ "+info)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(out, "  ⚠️  "+warning)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate scenario files",
		ArgsUsage: "[file.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "../configs",
				Usage:   "directory scanned for *.json when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat warnings as errors",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
				if err != nil {
					return fmt.Errorf("finding config files: %w", err)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no scenario files found in %s", cmd.String("dir"))
			}

			allValid := true
			for _, file := range files {
				result := validateConfig(file)
				printResult(out, result)
				if !result.Valid || (cmd.Bool("strict") && len(result.Warnings) > 0) {
					allValid = false
				}
			}

			fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				return errors.New("some configurations have errors")
			}
			fmt.Fprintln(out, "✅ All configurations are valid!")
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
