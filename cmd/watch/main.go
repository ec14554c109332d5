// Command watch runs the autopilot on a scenario in the terminal and redraws
// the map after every tick.
//
// Keys: space pauses, n steps once while paused, r resets, q quits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/autopilot/game/config"
	"github.com/wricardo/mcp-training/autopilot/game/engine"
	"github.com/wricardo/mcp-training/autopilot/game/service"
	"github.com/wricardo/mcp-training/autopilot/game/session"
	"github.com/wricardo/mcp-training/autopilot/game/telemetry"
	"github.com/wricardo/mcp-training/autopilot/game/world"
)

const recentLines = 10

var carGlyph = map[world.Orientation]string{
	world.North: "^",
	world.East:  ">",
	world.South: "v",
	world.West:  "<",
}

type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	ctx      context.Context
	svc      service.GameService
	session  string
	scenario string
	interval time.Duration
	maxTicks int

	state     *engine.GameState
	ticks     int
	thrashing int
	recent    []string
	paused    bool
	err       error
}

func newModel(ctx context.Context, svc service.GameService, scenario string, interval time.Duration, maxTicks int) (model, error) {
	info, err := svc.CreateSession(ctx, scenario)
	if err != nil {
		return model{}, err
	}
	return model{
		ctx:      ctx,
		svc:      svc,
		session:  info.ID,
		scenario: info.GameConfig.Name,
		interval: interval,
		maxTicks: maxTicks,
		state:    info.GameState,
	}, nil
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m model) done() bool {
	return m.state.GameOver || m.err != nil || (m.maxTicks > 0 && m.ticks >= m.maxTicks)
}

func (m model) step() model {
	result, err := m.svc.Step(m.ctx, m.session)
	if err != nil {
		m.err = err
		return m
	}
	m.ticks++
	m.state = result.Drive.GameState
	d := result.Decision
	if d.Thrashing {
		m.thrashing++
	}

	line := fmt.Sprintf("%3d. [%-7s] %-8s %v health %d", m.ticks, d.Mode, d.Command, m.state.Position, m.state.Health)
	switch {
	case d.Fallback:
		line += " (no route)"
	case d.Thrashing:
		line += " (kept route)"
	case !result.Drive.Success:
		line += " (blocked)"
	}
	m.recent = append([]string{line}, m.recent...)
	if len(m.recent) > recentLines {
		m.recent = m.recent[:recentLines]
	}
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if !m.paused && !m.done() {
				return m, tickCmd(m.interval)
			}
		case "n":
			if m.paused && !m.done() {
				m = m.step()
			}
		case "r":
			state, err := m.svc.Reset(m.ctx, m.session)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.state, m.ticks, m.thrashing, m.recent, m.err = state, 0, 0, nil, nil
			if !m.paused {
				return m, tickCmd(m.interval)
			}
		}
	case tickMsg:
		if m.paused || m.done() {
			return m, nil
		}
		m = m.step()
		if m.done() {
			return m, nil
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  session %s\n\n", m.scenario, m.session)

	for row := range m.state.Grid {
		for col, tile := range m.state.Grid[row] {
			if (world.Coordinate{X: col, Y: len(m.state.Grid) - 1 - row}) == m.state.Position {
				b.WriteString(carGlyph[m.state.Orientation])
				continue
			}
			b.WriteString(engine.TileChar(tile))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nTick %d  Health %d/%d  Keys %d/%d  Thrashing %d\n",
		m.ticks, m.state.Health, m.state.MaxHealth, len(m.state.Keys), m.state.TotalKeys, m.thrashing)
	switch {
	case m.state.Victory:
		b.WriteString("VICTORY!\n")
	case m.state.GameOver:
		b.WriteString("GAME OVER: " + m.state.Message + "\n")
	case m.err != nil:
		b.WriteString("Error: " + m.err.Error() + "\n")
	case m.maxTicks > 0 && m.ticks >= m.maxTicks:
		b.WriteString("Tick limit reached\n")
	case m.paused:
		b.WriteString("Paused\n")
	}

	b.WriteString("\nRecent ticks:\n")
	for _, line := range m.recent {
		b.WriteString(line + "\n")
	}

	b.WriteString("\nspace pause · n step · r reset · q quit\n")
	return b.String()
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "watch the autopilot drive a scenario",
		ArgsUsage: "[scenario]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "configs",
				Usage:   "scenario directory",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 200 * time.Millisecond,
				Usage: "delay between ticks",
			},
			&cli.IntFlag{
				Name:  "max-ticks",
				Value: service.MaxAutodriveTicks,
				Usage: "stop after this many ticks (0 for no limit)",
			},
			&cli.StringFlag{
				Name:  "telemetry-dir",
				Usage: "record the ticks as parquet files in this directory",
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

			interval := cmd.Duration("interval")
			if interval <= 0 {
				return errors.New("interval must be positive")
			}

			m, err := newModel(ctx, svc, cmd.Args().First(), interval, int(cmd.Int("max-ticks")))
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(model); ok {
				fmt.Printf("%s: %d ticks, health %d, keys %d/%d, victory %v\n",
					fm.scenario, fm.ticks, fm.state.Health, len(fm.state.Keys), fm.state.TotalKeys, fm.state.Victory)
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
