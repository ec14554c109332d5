// Command analyze prints route statistics for scenario files: tile counts,
// the route both cost policies find from the start to every key and exit on
// the fully revealed map, and the outcome of a full autopilot run.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/autopilot/game/autopilot"
	"github.com/wricardo/mcp-training/autopilot/game/config"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/planner"
	"github.com/wricardo/mcp-training/autopilot/game/service"
	"github.com/wricardo/mcp-training/autopilot/game/session"
	"github.com/wricardo/mcp-training/autopilot/game/telemetry"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

// RouteStat is the route one policy finds from the start to a target
type RouteStat struct {
	Policy string
	Found  bool
	Steps  int
	Damage int
}

// TargetStat groups the routes to one key or exit
type TargetStat struct {
	Label  string
	At     world.Coordinate
	Routes []RouteStat
}

// RunStat summarises an autopilot run
type RunStat struct {
	Ticks     int
	Stop      string
	Thrashing int
	Health    int
	Keys      int
}

// Report is the analysis of one scenario
type Report struct {
	ID         string
	Name       string
	Width      int
	Height     int
	Roads      int
	Walls      int
	Keys       int
	Lava       int
	Health     int
	Mud        int
	Start      world.Coordinate
	StartHP    int
	MaxHP      int
	LavaDamage int
	Targets    []TargetStat
	Run        RunStat
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "route statistics for scenario files",
		ArgsUsage: "[scenario ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "configs",
				Usage:   "scenario directory",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "max-ticks",
				Value: service.MaxAutodriveTicks,
				Usage: "tick limit of the autopilot run",
			},
			&cli.StringFlag{
				Name:  "telemetry-dir",
				Usage: "record the autopilot runs as parquet files in this directory",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configs, err := config.NewManager(cmd.String("dir"))
			if err != nil {
				return err
			}

			var opts []service.Option
			if dir := cmd.String("telemetry-dir"); dir != "" {
				writer, err := telemetry.NewWriter(dir, 0)
				if err != nil {
					return err
				}
				defer writer.Close()
				opts = append(opts, service.WithRecorder(writer))
			}
			svc := service.NewGameService(session.NewManager(), configs, opts...)

			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				infos, err := configs.ListConfigs()
				if err != nil {
					return err
				}
				for _, info := range infos {
					ids = append(ids, info.ConfigID)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("no scenarios found in %s", cmd.String("dir"))
			}

			for _, id := range ids {
				report, err := analyzeScenario(ctx, svc, configs, id, int(cmd.Int("max-ticks")))
				if err != nil {
					return fmt.Errorf("analyze %s: %w", id, err)
				}
				printReport(out, report)
			}
			return nil
		},
	}
}

// analyzeScenario searches the fully revealed map with both policies and runs the autopilot once
func analyzeScenario(ctx context.Context, svc service.GameService, configs service.ConfigManager, id string, maxTicks int) (*Report, error) {
	cfg, err := configs.LoadConfig(id)
	if err != nil {
		return nil, err
	}
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	state := eng.GetState()
	m := state.Map()

	report := &Report{
		ID:         id,
		Name:       cfg.Name,
		Height:     len(cfg.Layout),
		Roads:      engine.CountTileType(state.Grid, world.Road),
		Walls:      engine.CountTileType(state.Grid, world.Wall),
		Keys:       state.TotalKeys,
		Lava:       len(m.Find(func(t world.Tile) bool { return t.IsLava() })),
		Health:     len(autopilot.HealthTiles(m)),
		Mud:        len(m.Find(func(t world.Tile) bool { return t.IsMud() })),
		Start:      state.Position,
		StartHP:    state.Health,
		MaxHP:      state.MaxHealth,
		LavaDamage: eng.LavaDamage(),
	}
	if report.Height > 0 {
		report.Width = len(cfg.Layout[0])
	}

	policies := []struct {
		name   string
		policy planner.CostPolicy
	}{
		{"goal", planner.GoalSeeking{Keys: world.NewKeySet(), LavaDamage: report.LavaDamage}},
		{"damage-averse", planner.DamageAverse{LavaDamage: report.LavaDamage}},
	}

	addTarget := func(label string, at world.Coordinate) {
		target := TargetStat{Label: label, At: at}
		for _, p := range policies {
			path := planner.Search(m, state.Position, at, p.policy)
			stat := RouteStat{Policy: p.name, Found: !path.Empty(), Damage: path.Damage}
			if stat.Found {
				stat.Steps = path.Len() - 1
			}
			target.Routes = append(target.Routes, stat)
		}
		report.Targets = append(report.Targets, target)
	}
	for _, c := range autopilot.UncollectedKeys(m, world.NewKeySet()) {
		tile, _ := m.Tile(c)
		addTarget(fmt.Sprintf("key %d", tile.Key), c)
	}
	for _, c := range autopilot.Exits(m) {
		addTarget("exit", c)
	}

	info, err := svc.CreateSession(ctx, id)
	if err != nil {
		return nil, err
	}
	defer svc.DeleteSession(ctx, info.ID)

	run, err := svc.Autodrive(ctx, info.ID, maxTicks)
	if err != nil {
		return nil, err
	}
	report.Run = RunStat{
		Ticks:     run.Ticks,
		Stop:      run.StopReasonCode,
		Thrashing: run.Thrashing,
		Health:    run.GameState.Health,
		Keys:      len(run.GameState.Keys),
	}
	return report, nil
}

func printReport(out io.Writer, r *Report) {
	fmt.Fprintf(out, "\n=== %s (%s) ===\n", r.ID, r.Name)
	fmt.Fprintf(out, "Grid: %dx%d, keys %d, lava %d, health tiles %d, mud %d, road %d, walls %d\n",
		r.Width, r.Height, r.Keys, r.Lava, r.Health, r.Mud, r.Roads, r.Walls)
	fmt.Fprintf(out, "Health: %d/%d, lava damage %d\n", r.StartHP, r.MaxHP, r.LavaDamage)

	fmt.Fprintf(out, "Routes from start %v:\n", r.Start)
	for _, t := range r.Targets {
		fmt.Fprintf(out, "  %s at %v:", t.Label, t.At)
		for i, route := range t.Routes {
			sep := ","
			if i == 0 {
				sep = ""
			}
			if !route.Found {
				fmt.Fprintf(out, "%s %s unreachable", sep, route.Policy)
				continue
			}
			fmt.Fprintf(out, "%s %s %d steps/%d dmg", sep, route.Policy, route.Steps, route.Damage)
		}
		fmt.Fprintln(out)
	}

	if r.Run.Stop == service.StopVictory {
		fmt.Fprintf(out, "✅ Autopilot: victory in %d ticks", r.Run.Ticks)
	} else {
		fmt.Fprintf(out, "⚠️  Autopilot: stopped (%s) after %d ticks", r.Run.Stop, r.Run.Ticks)
	}
	fmt.Fprintf(out, ", health %d, keys %d/%d, thrashing %d\n", r.Run.Health, r.Run.Keys, r.Keys, r.Run.Thrashing)
}
